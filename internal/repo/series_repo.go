// Package repo – repository functions for the Series model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

// SeriesFilter narrows ListSeries. Zero-valued fields are ignored.
type SeriesFilter struct {
	Country    string
	BrandName  string
	SeriesName string
	ModelType  string
	EnergyType string
}

func applySeriesFilter(q *gorm.DB, f SeriesFilter) *gorm.DB {
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.BrandName != "" {
		q = q.Where("brand_name = ?", f.BrandName)
	}
	if f.SeriesName != "" {
		q = q.Where("series_name LIKE ?", "%"+f.SeriesName+"%")
	}
	if f.ModelType != "" {
		q = q.Where("model_type = ?", f.ModelType)
	}
	if f.EnergyType != "" {
		q = q.Where("energy_type = ?", f.EnergyType)
	}
	return q
}

// CreateSeries inserts a new series row, stamping CreateTime in UTC when the
// caller left it zero.
func CreateSeries(ctx context.Context, db *gorm.DB, s *domain.Series) error {
	if s.CreateTime.IsZero() {
		s.CreateTime = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// GetSeries fetches a single series by primary key, or ErrNotFound.
func GetSeries(ctx context.Context, db *gorm.DB, id int64) (*domain.Series, error) {
	var s domain.Series
	err := db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListSeries returns all series matching the filter, newest first.
func ListSeries(ctx context.Context, db *gorm.DB, f SeriesFilter) ([]domain.Series, error) {
	var out []domain.Series
	err := applySeriesFilter(db.WithContext(ctx).Model(&domain.Series{}), f).
		Order("create_time DESC").
		Find(&out).Error
	return out, err
}

// SeriesByIDs batch-loads series rows by primary key. The result order is
// unspecified; callers that need rank order re-sort by the requested ids.
func SeriesByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Series, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Series
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// UpdateSeries saves all fields of an existing series row.
func UpdateSeries(ctx context.Context, db *gorm.DB, s *domain.Series) error {
	now := time.Now().UTC()
	s.UpdateTime = &now
	res := db.WithContext(ctx).Model(&domain.Series{}).Where("id = ?", s.ID).Updates(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSeriesByIDs removes series rows by primary key and reports how many
// rows were deleted.
func DeleteSeriesByIDs(ctx context.Context, db *gorm.DB, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Series{})
	return res.RowsAffected, res.Error
}

// ScoreAverageRow carries the dataset-wide mean of each score dimension.
type ScoreAverageRow struct {
	Overall       float64
	Exterior      float64
	Interior      float64
	Space         float64
	Handling      float64
	Comfort       float64
	Power         float64
	Configuration float64
}

// SeriesScoreAverages computes the dataset average of the eight score
// dimensions across all series. NULL scores are excluded per column by the
// AVG aggregate.
func SeriesScoreAverages(ctx context.Context, db *gorm.DB) (*ScoreAverageRow, error) {
	var row ScoreAverageRow
	err := db.WithContext(ctx).Model(&domain.Series{}).
		Select(
			"AVG(overall_score) AS overall",
			"AVG(exterior_score) AS exterior",
			"AVG(interior_score) AS interior",
			"AVG(space_score) AS space",
			"AVG(handling_score) AS handling",
			"AVG(comfort_score) AS comfort",
			"AVG(power_score) AS power",
			"AVG(configuration_score) AS configuration",
		).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
