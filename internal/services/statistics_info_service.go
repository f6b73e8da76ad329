// Package services – statistics cache store.
//
// StatisticsInfoService fronts the statistics_info table with an optional
// Redis TTL cache. Reads and writes are strictly best-effort: every failure
// degrades to a cache miss (forcing a recompute) or a skipped write, never an
// error surfaced to the statistics caller. The admin CRUD methods do surface
// errors as usual.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/cache"
	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/repo"
	"github.com/yyang/go-car-backend/internal/statskey"
)

// StatisticsInfoService reads and writes cached statistics content.
type StatisticsInfoService struct {
	DB *gorm.DB
	// Cache is the optional Redis front; nil disables it.
	Cache *cache.Store
}

// GetPoints loads the cached points stored under key. The second return
// reports whether a cache entry exists at all: an entry holding an empty
// point list is still a hit, which is how empty (province, month) results
// avoid being recomputed forever.
func (s *StatisticsInfoService) GetPoints(ctx context.Context, key string) ([]domain.StatPoint, bool) {
	var points []domain.StatPoint
	if s.Cache.GetJSON(ctx, key, &points) {
		return points, true
	}

	row, err := repo.GetStatisticsInfoByKey(ctx, s.DB, key)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("statistics cache read failed")
		}
		return nil, false
	}
	if row.Content != "" {
		if err := json.Unmarshal([]byte(row.Content), &points); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("statistics cache content corrupt, recomputing")
			return nil, false
		}
	}
	s.Cache.SetJSON(ctx, key, points)
	return points, true
}

// SavePoints upserts the cache row for one (metric, scope, month) and warms
// the Redis front. A nil point list is stored as an empty array so the entry
// still counts as a hit later.
func (s *StatisticsInfoService) SavePoints(ctx context.Context, m statskey.Metric, key, province string, month int, points []domain.StatPoint) {
	if points == nil {
		points = []domain.StatPoint{}
	}
	content, err := json.Marshal(points)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("statistics cache marshal failed")
		return
	}

	name := fmt.Sprintf("%s-%d", m.Name, month)
	if province != "" {
		name = fmt.Sprintf("%s-%s-%d", m.Name, province, month)
	}
	row := &domain.StatisticsInfo{
		Type:          m.Type,
		Name:          name,
		CommonKey:     m.CommonKey,
		StatisticsKey: key,
		Content:       string(content),
	}
	if err := repo.UpsertStatisticsInfoByKey(ctx, s.DB, row); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("statistics cache write failed")
		return
	}
	s.Cache.SetJSON(ctx, key, points)
}

// ListStatisticsInfo returns cache rows matching the admin filter.
func (s *StatisticsInfoService) ListStatisticsInfo(ctx context.Context, f repo.StatisticsInfoFilter) ([]domain.StatisticsInfo, error) {
	return repo.ListStatisticsInfo(ctx, s.DB, f)
}

// GetStatisticsInfo fetches one cache row by its statistics key.
func (s *StatisticsInfoService) GetStatisticsInfo(ctx context.Context, key string) (*domain.StatisticsInfo, error) {
	return repo.GetStatisticsInfoByKey(ctx, s.DB, key)
}

// CreateStatisticsInfo inserts a cache row from the admin screen.
func (s *StatisticsInfoService) CreateStatisticsInfo(ctx context.Context, row *domain.StatisticsInfo) error {
	if err := repo.CreateStatisticsInfo(ctx, s.DB, row); err != nil {
		return err
	}
	s.Cache.Delete(ctx, row.StatisticsKey)
	return nil
}

// UpdateStatisticsInfo saves an edited cache row and drops the Redis entry so
// the next read sees the new content.
func (s *StatisticsInfoService) UpdateStatisticsInfo(ctx context.Context, row *domain.StatisticsInfo) error {
	if err := repo.UpdateStatisticsInfo(ctx, s.DB, row); err != nil {
		return err
	}
	s.Cache.Delete(ctx, row.StatisticsKey)
	return nil
}

// DeleteStatisticsInfo removes cache rows by id. This is the operator's
// invalidation hook after a sales data correction.
func (s *StatisticsInfoService) DeleteStatisticsInfo(ctx context.Context, ids []string) (int64, error) {
	rows, err := repo.GetStatisticsInfoByIDs(ctx, s.DB, ids)
	if err == nil {
		keys := make([]string, 0, len(rows))
		for _, r := range rows {
			keys = append(keys, r.StatisticsKey)
		}
		s.Cache.Delete(ctx, keys...)
	}
	return repo.DeleteStatisticsInfoByIDs(ctx, s.DB, ids)
}

// ImportStatisticsInfo inserts pre-computed cache rows one by one, reporting
// the per-row outcome in the shared import report format.
func (s *StatisticsInfoService) ImportStatisticsInfo(ctx context.Context, rows []domain.StatisticsInfo) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyImport
	}
	report := &importReport{}
	for i := range rows {
		row := &rows[i]
		if row.StatisticsKey == "" {
			report.failure(row.Name, "统计key不能为空")
			continue
		}
		if err := repo.UpsertStatisticsInfoByKey(ctx, s.DB, row); err != nil {
			report.failure(row.Name, err.Error())
			continue
		}
		s.Cache.Delete(ctx, row.StatisticsKey)
		report.success(row.Name)
	}
	return report.result()
}
