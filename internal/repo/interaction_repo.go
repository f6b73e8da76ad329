// Package repo – repository functions for the View and Like interaction
// models. Interaction rows are immutable: there are create, list, count and
// delete operations but no update.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

// InteractionFilter narrows interaction listings. Zero-valued fields are
// ignored.
type InteractionFilter struct {
	UserID     int64
	UserName   string
	SeriesID   int64
	SeriesName string
}

func applyInteractionFilter(q *gorm.DB, f InteractionFilter) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.UserName != "" {
		q = q.Where("user_name LIKE ?", "%"+f.UserName+"%")
	}
	if f.SeriesID != 0 {
		q = q.Where("series_id = ?", f.SeriesID)
	}
	if f.SeriesName != "" {
		q = q.Where("series_name LIKE ?", "%"+f.SeriesName+"%")
	}
	return q
}

// CreateView inserts a browsing record.
func CreateView(ctx context.Context, db *gorm.DB, v *domain.View) error {
	if v.CreateTime.IsZero() {
		v.CreateTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(v).Error
}

// ListViews returns views matching the filter, newest first.
func ListViews(ctx context.Context, db *gorm.DB, f InteractionFilter) ([]domain.View, error) {
	var out []domain.View
	err := applyInteractionFilter(db.WithContext(ctx).Model(&domain.View{}), f).
		Order("create_time DESC").
		Find(&out).Error
	return out, err
}

// ListUserViews returns the user's most recent views, capped at limit
// (0 = no cap).
func ListUserViews(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.View, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID).Order("create_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.View
	err := q.Find(&out).Error
	return out, err
}

// CountViewsSince counts the user's views created strictly after t.
func CountViewsSince(ctx context.Context, db *gorm.DB, userID int64, t time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.View{}).
		Where("user_id = ? AND create_time > ?", userID, t).
		Count(&n).Error
	return n, err
}

// DeleteViewsByIDs removes view rows by primary key.
func DeleteViewsByIDs(ctx context.Context, db *gorm.DB, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.View{})
	return res.RowsAffected, res.Error
}

// CreateLike inserts a like record.
func CreateLike(ctx context.Context, db *gorm.DB, l *domain.Like) error {
	if l.CreateTime.IsZero() {
		l.CreateTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(l).Error
}

// ListLikes returns likes matching the filter, newest first.
func ListLikes(ctx context.Context, db *gorm.DB, f InteractionFilter) ([]domain.Like, error) {
	var out []domain.Like
	err := applyInteractionFilter(db.WithContext(ctx).Model(&domain.Like{}), f).
		Order("create_time DESC").
		Find(&out).Error
	return out, err
}

// ListUserLikes returns the user's most recent likes, capped at limit
// (0 = no cap).
func ListUserLikes(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.Like, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID).Order("create_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Like
	err := q.Find(&out).Error
	return out, err
}

// CountLikesSince counts the user's likes created strictly after t.
func CountLikesSince(ctx context.Context, db *gorm.DB, userID int64, t time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND create_time > ?", userID, t).
		Count(&n).Error
	return n, err
}

// LikeExists reports whether the user already liked the series.
func LikeExists(ctx context.Context, db *gorm.DB, userID, seriesID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND series_id = ?", userID, seriesID).
		Count(&n).Error
	return n > 0, err
}

// DeleteLikesByIDs removes like rows by primary key.
func DeleteLikesByIDs(ctx context.Context, db *gorm.DB, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Like{})
	return res.RowsAffected, res.Error
}

// ActiveUsers returns the distinct (user id, user name) pairs with any view
// or like created strictly after t. It feeds the background recommendation
// refresh.
func ActiveUsers(ctx context.Context, db *gorm.DB, t time.Time) (map[int64]string, error) {
	users := make(map[int64]string)
	for _, model := range []interface{}{&domain.View{}, &domain.Like{}} {
		var rows []struct {
			UserID   int64
			UserName string
		}
		err := db.WithContext(ctx).Model(model).
			Distinct("user_id, user_name").
			Where("create_time > ?", t).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			users[r.UserID] = r.UserName
		}
	}
	return users, nil
}

// InteractedSeriesIDs returns the distinct series ids the user has viewed or
// liked, used to exclude them from recommendation candidates.
func InteractedSeriesIDs(ctx context.Context, db *gorm.DB, userID int64) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for _, model := range []interface{}{&domain.View{}, &domain.Like{}} {
		var rows []int64
		err := db.WithContext(ctx).Model(model).
			Distinct("series_id").
			Where("user_id = ?", userID).
			Pluck("series_id", &rows).Error
		if err != nil {
			return nil, err
		}
		for _, id := range rows {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}
