// Package services – recommendation engine orchestration.
//
// RecommendService owns the snapshot lifecycle: it decides when a user's
// ranking is stale, rebuilds the preference vector from the interaction
// history, scores the candidate pool and persists the result as an
// insert-only snapshot. Read paths never fail the caller: any generation or
// decoding problem is logged and degrades to an empty page.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/metrics"
	"github.com/yyang/go-car-backend/internal/preference"
	"github.com/yyang/go-car-backend/internal/repo"
)

// Generation triggers recorded in metrics.
const (
	triggerNoHistory = "no_history"
	triggerStale     = "stale"
	triggerForced    = "forced"
)

// RecommendService manages per-user recommendation snapshots.
type RecommendService struct {
	DB *gorm.DB
	// Now is the clock used for decay and staleness checks; nil means
	// time.Now. Tests pin it for deterministic weights.
	Now func() time.Time
}

func (s *RecommendService) clock() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RecommendPage returns one page of the user's current recommendation,
// hydrated to full series rows in rank order, plus the total ranking length.
//
// Requesting the first page re-checks freshness and regenerates the snapshot
// when the interaction history moved past the configured thresholds; deeper
// pages read the existing snapshot as-is so one browse session pages through
// a stable ranking. A user with no snapshot and no regeneration success gets
// an empty page, never an error.
func (s *RecommendService) RecommendPage(ctx context.Context, userID int64, userName string, page, size int) ([]domain.Series, int, error) {
	if page <= 1 {
		page = 1
		s.ensureFresh(ctx, userID, userName)
	}
	if size <= 0 {
		size = 10
	}

	rec, err := repo.LatestRecommend(ctx, s.DB, userID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Error().Err(err).Int64("user_id", userID).Msg("recommendation read failed")
		}
		return []domain.Series{}, 0, nil
	}

	var content domain.RecommendContent
	if err := json.Unmarshal([]byte(rec.Content), &content); err != nil {
		log.Error().Err(err).Int64("recommend_id", rec.ID).Msg("recommendation content corrupt")
		return []domain.Series{}, 0, nil
	}

	total := len(content.SeriesIDs)
	start := (page - 1) * size
	if start >= total {
		return []domain.Series{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	pageIDs := content.SeriesIDs[start:end]

	rows, err := repo.SeriesByIDs(ctx, s.DB, pageIDs)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("recommendation hydration failed")
		return []domain.Series{}, total, nil
	}

	// Restore rank order; series deleted since the snapshot simply drop out.
	byID := make(map[int64]domain.Series, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	out := make([]domain.Series, 0, len(pageIDs))
	for _, id := range pageIDs {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out, total, nil
}

// ensureFresh regenerates the user's snapshot when there is none or when the
// interaction history since the latest snapshot reached either threshold.
// Failures are logged and swallowed so the read path can still serve whatever
// snapshot exists.
func (s *RecommendService) ensureFresh(ctx context.Context, userID int64, userName string) {
	latest, err := repo.LatestRecommend(ctx, s.DB, userID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		if _, err := s.generate(ctx, userID, userName, triggerNoHistory); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("recommendation generation failed")
		}
		return
	case err != nil:
		log.Error().Err(err).Int64("user_id", userID).Msg("recommendation freshness check failed")
		return
	}

	p := loadParams(ctx, s.DB)
	views, err := repo.CountViewsSince(ctx, s.DB, userID, latest.CreateTime)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("view count failed")
		return
	}
	likes, err := repo.CountLikesSince(ctx, s.DB, userID, latest.CreateTime)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("like count failed")
		return
	}
	if views < int64(p.ViewThreshold) && likes < int64(p.LikeThreshold) {
		return
	}
	if _, err := s.generate(ctx, userID, userName, triggerStale); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("recommendation regeneration failed")
	}
}

// Generate forces a snapshot rebuild regardless of freshness.
func (s *RecommendService) Generate(ctx context.Context, userID int64, userName string) (*domain.Recommend, error) {
	return s.generate(ctx, userID, userName, triggerForced)
}

func (s *RecommendService) generate(ctx context.Context, userID int64, userName, trigger string) (*domain.Recommend, error) {
	started := time.Now()
	now := s.clock()
	p := loadParams(ctx, s.DB)

	views, err := repo.ListUserViews(ctx, s.DB, userID, 0)
	if err != nil {
		return nil, err
	}
	likes, err := repo.ListUserLikes(ctx, s.DB, userID, 0)
	if err != nil {
		return nil, err
	}
	vector := preference.BuildVector(views, likes, now, p)

	candidates, err := repo.ListSeries(ctx, s.DB, repo.SeriesFilter{})
	if err != nil {
		return nil, err
	}
	seen, err := repo.InteractedSeriesIDs(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	pool := candidates[:0:0]
	for _, c := range candidates {
		if _, ok := seen[c.ID]; !ok {
			pool = append(pool, c)
		}
	}

	avg, err := repo.SeriesScoreAverages(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	ranked := preference.ScoreCandidates(vector, pool, scoreAverages(avg), p)

	ids := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Series.ID)
	}
	content, err := json.Marshal(domain.RecommendContent{
		SeriesIDs:   ids,
		Total:       len(ids),
		GeneratedAt: now,
	})
	if err != nil {
		return nil, err
	}
	modelInfo, err := json.Marshal(domain.RecommendModelInfo{
		DecayFactor:      p.DecayFactor,
		ViewDefaultScore: p.ViewScore,
		LikeDefaultScore: p.LikeScore,
		DimensionWeights: p.DimensionWeights,
		ViewCount:        len(views),
		LikeCount:        len(likes),
		Preferences:      vector,
	})
	if err != nil {
		return nil, err
	}

	rec := &domain.Recommend{
		UserID:     userID,
		UserName:   userName,
		ModelInfo:  string(modelInfo),
		Content:    string(content),
		CreateTime: now,
	}
	if err := repo.CreateRecommend(ctx, s.DB, rec); err != nil {
		return nil, err
	}

	metrics.Generation(trigger, time.Since(started))
	log.Info().
		Int64("user_id", userID).
		Str("trigger", trigger).
		Int("candidates", len(pool)).
		Int("ranked", len(ids)).
		Msg("recommendation snapshot generated")
	return rec, nil
}

func scoreAverages(row *repo.ScoreAverageRow) preference.Averages {
	return preference.Averages{
		preference.ScoreOverall:       row.Overall,
		preference.ScoreExterior:      row.Exterior,
		preference.ScoreInterior:      row.Interior,
		preference.ScoreSpace:         row.Space,
		preference.ScoreHandling:      row.Handling,
		preference.ScoreComfort:       row.Comfort,
		preference.ScorePower:         row.Power,
		preference.ScoreConfiguration: row.Configuration,
	}
}

// ListRecommends returns snapshots matching the admin filter.
func (s *RecommendService) ListRecommends(ctx context.Context, f repo.RecommendFilter) ([]domain.Recommend, error) {
	return repo.ListRecommends(ctx, s.DB, f)
}

// GetRecommend fetches one snapshot by id.
func (s *RecommendService) GetRecommend(ctx context.Context, id int64) (*domain.Recommend, error) {
	rec, err := repo.GetRecommend(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrRecommendNotFound
	}
	return rec, err
}

// UpdateRecommend saves an edited snapshot (admin screen only).
func (s *RecommendService) UpdateRecommend(ctx context.Context, rec *domain.Recommend) error {
	err := repo.UpdateRecommend(ctx, s.DB, rec)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRecommendNotFound
	}
	return err
}

// DeleteRecommends removes snapshots by id.
func (s *RecommendService) DeleteRecommends(ctx context.Context, ids []int64) (int64, error) {
	return repo.DeleteRecommendsByIDs(ctx, s.DB, ids)
}

// ImportRecommends inserts snapshot rows one by one, reporting the per-row
// outcome in the shared import report format. Rows carrying an existing id
// update the stored row instead of inserting when updateExisting is set.
func (s *RecommendService) ImportRecommends(ctx context.Context, rows []domain.Recommend, updateExisting bool) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyImport
	}
	report := &importReport{}
	for i := range rows {
		row := &rows[i]
		if err := s.importOne(ctx, row, updateExisting); err != nil {
			report.failure(row.UserName, err.Error())
			continue
		}
		report.success(row.UserName)
	}
	return report.result()
}

func (s *RecommendService) importOne(ctx context.Context, row *domain.Recommend, updateExisting bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("user_id", row.UserID).Msg("recommend import row panicked")
			err = fmt.Errorf("数据异常: %v", r)
		}
	}()

	if row.UserID == 0 {
		return errors.New("用户ID不能为空")
	}
	if row.Content != "" && !json.Valid([]byte(row.Content)) {
		return errors.New("推荐内容格式不正确")
	}
	if updateExisting && row.ID != 0 {
		existing, findErr := repo.GetRecommend(ctx, s.DB, row.ID)
		if findErr == nil {
			row.CreateTime = existing.CreateTime
			return repo.UpdateRecommend(ctx, s.DB, row)
		}
		if !errors.Is(findErr, repo.ErrNotFound) {
			return findErr
		}
	}
	row.ID = 0
	return repo.CreateRecommend(ctx, s.DB, row)
}
