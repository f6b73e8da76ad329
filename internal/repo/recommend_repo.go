// Package repo – repository functions for the Recommend snapshot model.
//
// Snapshots are insert-only by design: regeneration appends a new row and
// readers pick the most recent one per user, so past rankings stay available
// for audit. Update and delete exist only for the admin CRUD screen.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

// RecommendFilter narrows ListRecommends. Zero-valued fields are ignored.
type RecommendFilter struct {
	UserID   int64
	UserName string
}

// CreateRecommend appends a new recommendation snapshot.
func CreateRecommend(ctx context.Context, db *gorm.DB, r *domain.Recommend) error {
	if r.CreateTime.IsZero() {
		r.CreateTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// LatestRecommend returns the newest snapshot for a user, or ErrNotFound when
// the user has never been recommended to.
func LatestRecommend(ctx context.Context, db *gorm.DB, userID int64) (*domain.Recommend, error) {
	var r domain.Recommend
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("create_time DESC").
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetRecommend fetches one snapshot by primary key, or ErrNotFound.
func GetRecommend(ctx context.Context, db *gorm.DB, id int64) (*domain.Recommend, error) {
	var r domain.Recommend
	err := db.WithContext(ctx).First(&r, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ListRecommends returns snapshots matching the filter, newest first.
func ListRecommends(ctx context.Context, db *gorm.DB, f RecommendFilter) ([]domain.Recommend, error) {
	q := db.WithContext(ctx).Model(&domain.Recommend{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.UserName != "" {
		q = q.Where("user_name LIKE ?", "%"+f.UserName+"%")
	}
	var out []domain.Recommend
	err := q.Order("create_time DESC").Find(&out).Error
	return out, err
}

// UpdateRecommend saves all fields of an existing snapshot (admin CRUD only;
// the engine never updates in place).
func UpdateRecommend(ctx context.Context, db *gorm.DB, r *domain.Recommend) error {
	res := db.WithContext(ctx).Model(&domain.Recommend{}).Where("id = ?", r.ID).Updates(r)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecommendsByIDs removes snapshots by primary key.
func DeleteRecommendsByIDs(ctx context.Context, db *gorm.DB, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Recommend{})
	return res.RowsAffected, res.Error
}
