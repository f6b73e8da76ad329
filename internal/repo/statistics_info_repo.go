// Package repo – repository functions for the StatisticsInfo cache table.
//
// The table is a generic key→content store: UpsertByKey implements the
// read-then-insert-or-update idiom the pipeline relies on. Concurrent writers
// for the same key may race; the content is derived from the same query for
// identical inputs, so last-writer-wins is harmless.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

// StatisticsInfoFilter narrows ListStatisticsInfo. Zero-valued fields are
// ignored.
type StatisticsInfoFilter struct {
	Type          string
	Name          string
	CommonKey     string
	StatisticsKey string
}

// GetStatisticsInfoByKey fetches one cache row by its unique statistics key,
// or ErrNotFound.
func GetStatisticsInfoByKey(ctx context.Context, db *gorm.DB, key string) (*domain.StatisticsInfo, error) {
	var row domain.StatisticsInfo
	err := db.WithContext(ctx).First(&row, "statistics_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// GetStatisticsInfoByKeys batch-loads cache rows for a key set. Missing keys
// are simply absent from the result.
func GetStatisticsInfoByKeys(ctx context.Context, db *gorm.DB, keys []string) ([]domain.StatisticsInfo, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var rows []domain.StatisticsInfo
	err := db.WithContext(ctx).Where("statistics_key IN ?", keys).Find(&rows).Error
	return rows, err
}

// GetStatisticsInfoByIDs batch-loads cache rows by primary key.
func GetStatisticsInfoByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.StatisticsInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.StatisticsInfo
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

// CreateStatisticsInfo inserts a cache row, assigning a UUID id and UTC
// creation time when absent.
func CreateStatisticsInfo(ctx context.Context, db *gorm.DB, row *domain.StatisticsInfo) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	if row.CreateTime.IsZero() {
		row.CreateTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(row).Error
}

// UpdateStatisticsInfo saves all fields of an existing cache row.
func UpdateStatisticsInfo(ctx context.Context, db *gorm.DB, row *domain.StatisticsInfo) error {
	now := time.Now().UTC()
	row.UpdateTime = &now
	res := db.WithContext(ctx).Model(&domain.StatisticsInfo{}).Where("id = ?", row.ID).Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertStatisticsInfoByKey writes a cache row keyed by row.StatisticsKey:
// when a row with the same key already exists its content is replaced,
// otherwise a new row is inserted.
func UpsertStatisticsInfoByKey(ctx context.Context, db *gorm.DB, row *domain.StatisticsInfo) error {
	existing, err := GetStatisticsInfoByKey(ctx, db, row.StatisticsKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		row.ID = existing.ID
		row.CreateTime = existing.CreateTime
		return UpdateStatisticsInfo(ctx, db, row)
	}
	return CreateStatisticsInfo(ctx, db, row)
}

// ListStatisticsInfo returns cache rows matching the filter, newest first.
func ListStatisticsInfo(ctx context.Context, db *gorm.DB, f StatisticsInfoFilter) ([]domain.StatisticsInfo, error) {
	q := db.WithContext(ctx).Model(&domain.StatisticsInfo{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Name != "" {
		q = q.Where("statistics_name LIKE ?", "%"+f.Name+"%")
	}
	if f.CommonKey != "" {
		q = q.Where("common_key = ?", f.CommonKey)
	}
	if f.StatisticsKey != "" {
		q = q.Where("statistics_key = ?", f.StatisticsKey)
	}
	var out []domain.StatisticsInfo
	err := q.Order("create_time DESC").Find(&out).Error
	return out, err
}

// DeleteStatisticsInfoByIDs removes cache rows by primary key. This is the
// operator's invalidation hook: there is no automatic dependency tracking.
func DeleteStatisticsInfoByIDs(ctx context.Context, db *gorm.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.StatisticsInfo{})
	return res.RowsAffected, res.Error
}
