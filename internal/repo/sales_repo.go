// Package repo – repository functions for the Sales model.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

// CreateSales inserts a monthly sales row.
func CreateSales(ctx context.Context, db *gorm.DB, s *domain.Sales) error {
	if s.CreateTime.IsZero() {
		s.CreateTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// GetSales fetches one sales row by primary key, or ErrNotFound.
func GetSales(ctx context.Context, db *gorm.DB, id int64) (*domain.Sales, error) {
	var s domain.Sales
	err := db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListSales returns sales rows matching the filter, newest month first.
func ListSales(ctx context.Context, db *gorm.DB, f SalesFilter) ([]domain.Sales, error) {
	var out []domain.Sales
	err := applySalesFilter(db.WithContext(ctx).Model(&domain.Sales{}), f).
		Order("month DESC").
		Find(&out).Error
	return out, err
}

// UpdateSales saves all fields of an existing sales row.
func UpdateSales(ctx context.Context, db *gorm.DB, s *domain.Sales) error {
	now := time.Now().UTC()
	s.UpdateTime = &now
	res := db.WithContext(ctx).Model(&domain.Sales{}).Where("id = ?", s.ID).Updates(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSalesByIDs removes sales rows by primary key.
func DeleteSalesByIDs(ctx context.Context, db *gorm.DB, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Sales{})
	return res.RowsAffected, res.Error
}
