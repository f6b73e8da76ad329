package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/config"
	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/repo"
	"github.com/yyang/go-car-backend/internal/services"
)

// worker drives the periodic jobs. Each job runs once at startup and then on
// its ticker; a failed iteration is logged and the next tick retries.
type worker struct {
	cfg        config.WorkerConfig
	stats      *services.StatisticsService
	recommends *services.RecommendService
	db         *gorm.DB
	limiter    *rate.Limiter
}

// runWarm keeps the current month's statistics warm across every metric so
// the first dashboard request of the day never pays the aggregation cost.
func (w *worker) runWarm(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.WarmInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.cfg.WarmInterval).Msg("statistics warm job started")
	w.warmOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.warmOnce(ctx)
		}
	}
}

func (w *worker) warmOnce(ctx context.Context) {
	now := time.Now()
	month := now.Year()*100 + int(now.Month())
	q := services.StatQuery{StartMonth: month, EndMonth: month}

	queries := []func(context.Context, services.StatQuery) []domain.StatPoint{
		w.stats.MapSales,
		w.stats.PriceSales,
		w.stats.EnergySales,
		w.stats.BrandSales,
		w.stats.CountrySales,
		w.stats.ModelSales,
		w.stats.SeriesSales,
	}
	for _, query := range queries {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		query(ctx, q)
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}
	w.stats.PredictSales(ctx, services.StatQuery{}, 0)
	log.Info().Int("month", month).Msg("statistics warm iteration completed")
}

// runRefresh regenerates recommendations for users active inside the
// configured window, so their first page load after a browsing session is
// served from a fresh snapshot.
func (w *worker) runRefresh(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.RefreshInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.cfg.RefreshInterval).Msg("recommendation refresh job started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refreshOnce(ctx)
		}
	}
}

func (w *worker) refreshOnce(ctx context.Context) {
	since := time.Now().UTC().Add(-w.cfg.ActiveWindow)
	users, err := repo.ActiveUsers(ctx, w.db, since)
	if err != nil {
		log.Error().Err(err).Msg("active user query failed")
		return
	}
	refreshed := 0
	for userID, userName := range users {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		if _, err := w.recommends.Generate(ctx, userID, userName); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("recommendation refresh failed")
			continue
		}
		refreshed++
	}
	log.Info().Int("users", len(users)).Int("refreshed", refreshed).Msg("recommendation refresh iteration completed")
}
