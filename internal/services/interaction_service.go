// Package services – view and like interaction recording.
//
// Recording an interaction snapshots the series attributes into the row, so
// the preference history stays stable even when a series is later edited or
// deleted. Likes are unique per (user, series); views are not.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/repo"
)

// InteractionService records and administers views and likes.
type InteractionService struct {
	DB *gorm.DB
}

// snapshotInteraction copies the series attributes a preference vector needs
// into a fresh interaction row. Price is the series minimum price, falling
// back to the maximum, matching how candidates are bucketed at scoring time.
func snapshotInteraction(userID int64, userName string, s *domain.Series) domain.Interaction {
	price := s.MinPrice
	if price == nil {
		price = s.MaxPrice
	}
	return domain.Interaction{
		UserID:             userID,
		UserName:           userName,
		SeriesID:           s.ID,
		Country:            s.Country,
		BrandName:          s.BrandName,
		Image:              s.Image,
		SeriesName:         s.SeriesName,
		ModelType:          s.ModelType,
		EnergyType:         s.EnergyType,
		OverallScore:       s.OverallScore,
		ExteriorScore:      s.ExteriorScore,
		InteriorScore:      s.InteriorScore,
		SpaceScore:         s.SpaceScore,
		HandlingScore:      s.HandlingScore,
		ComfortScore:       s.ComfortScore,
		PowerScore:         s.PowerScore,
		ConfigurationScore: s.ConfigurationScore,
		Price:              price,
		CreateTime:         time.Now().UTC(),
	}
}

// RecordView stores a browsing interaction for the given series.
func (s *InteractionService) RecordView(ctx context.Context, userID int64, userName string, seriesID int64) (*domain.View, error) {
	series, err := repo.GetSeries(ctx, s.DB, seriesID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}
	v := &domain.View{Interaction: snapshotInteraction(userID, userName, series)}
	if err := repo.CreateView(ctx, s.DB, v); err != nil {
		return nil, err
	}
	return v, nil
}

// RecordLike stores a like interaction. A second like of the same series by
// the same user returns ErrDuplicateLike.
func (s *InteractionService) RecordLike(ctx context.Context, userID int64, userName string, seriesID int64) (*domain.Like, error) {
	series, err := repo.GetSeries(ctx, s.DB, seriesID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}
	exists, err := repo.LikeExists(ctx, s.DB, userID, seriesID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateLike
	}
	l := &domain.Like{Interaction: snapshotInteraction(userID, userName, series)}
	if err := repo.CreateLike(ctx, s.DB, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ListViews returns views matching the admin filter.
func (s *InteractionService) ListViews(ctx context.Context, f repo.InteractionFilter) ([]domain.View, error) {
	return repo.ListViews(ctx, s.DB, f)
}

// ListLikes returns likes matching the admin filter.
func (s *InteractionService) ListLikes(ctx context.Context, f repo.InteractionFilter) ([]domain.Like, error) {
	return repo.ListLikes(ctx, s.DB, f)
}

// DeleteViews removes view rows by id.
func (s *InteractionService) DeleteViews(ctx context.Context, ids []int64) (int64, error) {
	return repo.DeleteViewsByIDs(ctx, s.DB, ids)
}

// DeleteLikes removes like rows by id.
func (s *InteractionService) DeleteLikes(ctx context.Context, ids []int64) (int64, error) {
	return repo.DeleteLikesByIDs(ctx, s.DB, ids)
}

// ImportViews inserts view rows one by one in the shared import report
// format. Imported rows carry their own snapshot fields as exported, so the
// series is not re-read.
func (s *InteractionService) ImportViews(ctx context.Context, rows []domain.View) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyImport
	}
	report := &importReport{}
	for i := range rows {
		row := &rows[i]
		if err := validateInteractionRow(&row.Interaction); err != nil {
			report.failure(row.SeriesName, err.Error())
			continue
		}
		if err := repo.CreateView(ctx, s.DB, row); err != nil {
			report.failure(row.SeriesName, err.Error())
			continue
		}
		report.success(row.SeriesName)
	}
	return report.result()
}

// ImportLikes inserts like rows one by one, rejecting duplicates per
// (user, series) the same way RecordLike does.
func (s *InteractionService) ImportLikes(ctx context.Context, rows []domain.Like) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyImport
	}
	report := &importReport{}
	for i := range rows {
		row := &rows[i]
		if err := validateInteractionRow(&row.Interaction); err != nil {
			report.failure(row.SeriesName, err.Error())
			continue
		}
		exists, err := repo.LikeExists(ctx, s.DB, row.UserID, row.SeriesID)
		if err != nil {
			report.failure(row.SeriesName, err.Error())
			continue
		}
		if exists {
			report.failure(row.SeriesName, "不能重复点赞")
			continue
		}
		if err := repo.CreateLike(ctx, s.DB, row); err != nil {
			report.failure(row.SeriesName, err.Error())
			continue
		}
		report.success(row.SeriesName)
	}
	return report.result()
}

func validateInteractionRow(rec *domain.Interaction) error {
	if rec.UserID == 0 {
		return errors.New("用户ID不能为空")
	}
	if rec.SeriesName == "" {
		return errors.New("车系名称不能为空")
	}
	if rec.CreateTime.IsZero() {
		rec.CreateTime = time.Now().UTC()
	}
	rec.ID = 0
	return nil
}
