// Package services – car series maintenance.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/repo"
)

// SeriesService provides the admin CRUD and batch import for car series.
type SeriesService struct {
	DB *gorm.DB
}

// CreateSeries inserts a new series row.
func (s *SeriesService) CreateSeries(ctx context.Context, row *domain.Series) error {
	return repo.CreateSeries(ctx, s.DB, row)
}

// GetSeries fetches one series by id.
func (s *SeriesService) GetSeries(ctx context.Context, id int64) (*domain.Series, error) {
	row, err := repo.GetSeries(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSeriesNotFound
	}
	return row, err
}

// ListSeries returns series matching the filter.
func (s *SeriesService) ListSeries(ctx context.Context, f repo.SeriesFilter) ([]domain.Series, error) {
	return repo.ListSeries(ctx, s.DB, f)
}

// UpdateSeries saves an edited series row.
func (s *SeriesService) UpdateSeries(ctx context.Context, row *domain.Series) error {
	err := repo.UpdateSeries(ctx, s.DB, row)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrSeriesNotFound
	}
	return err
}

// DeleteSeries removes series rows by id.
func (s *SeriesService) DeleteSeries(ctx context.Context, ids []int64) (int64, error) {
	return repo.DeleteSeriesByIDs(ctx, s.DB, ids)
}

// ImportSeries inserts rows one by one and reports the per-row outcome. A
// failed row never aborts the batch; when any row fails the returned error is
// an *ImportError carrying the full report. Rows with an existing SeriesID
// update the stored row instead of inserting when updateExisting is set.
func (s *SeriesService) ImportSeries(ctx context.Context, rows []domain.Series, updateExisting bool) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyImport
	}
	report := &importReport{}
	for i := range rows {
		row := &rows[i]
		if err := s.importOne(ctx, row, updateExisting); err != nil {
			report.failure(row.SeriesName, err.Error())
			continue
		}
		report.success(row.SeriesName)
	}
	return report.result()
}

func (s *SeriesService) importOne(ctx context.Context, row *domain.Series, updateExisting bool) (err error) {
	// Malformed spreadsheet rows can surface as panics deep in the mapper;
	// contain them to the row.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("series", row.SeriesName).Msg("series import row panicked")
			err = fmt.Errorf("数据异常: %v", r)
		}
	}()

	if row.SeriesName == "" {
		return errors.New("车系名称不能为空")
	}
	if updateExisting && row.SeriesID != 0 {
		var existing domain.Series
		findErr := s.DB.WithContext(ctx).
			Where("series_id = ?", row.SeriesID).
			First(&existing).Error
		if findErr == nil {
			row.ID = existing.ID
			row.CreateTime = existing.CreateTime
			return repo.UpdateSeries(ctx, s.DB, row)
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
	}
	return repo.CreateSeries(ctx, s.DB, row)
}
