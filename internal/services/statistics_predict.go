// Package services – sales volume forecast.
//
// The forecast combines an exponentially weighted moving average of the
// recent monthly totals with a dampened short-term trend and a seasonal
// factor per calendar month. Output values are clamped to a band around the
// recent actuals so a thin history cannot produce runaway projections.
package services

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/metrics"
	"github.com/yyang/go-car-backend/internal/repo"
	"github.com/yyang/go-car-backend/internal/statskey"
	"github.com/yyang/go-car-backend/internal/utils"
)

const (
	// ewmaDecay is the per-month weight decay of the moving average.
	ewmaDecay = 0.7
	// historyWindow bounds how many recent months feed the forecast.
	historyWindow = 12
	// defaultHorizon is the number of months projected when the caller does
	// not ask for a specific horizon.
	defaultHorizon = 6
)

// PredictSales forecasts the coming months' sales totals for the query's
// scope and filters. The horizon defaults to six months; the month range of
// the query is ignored in favor of the full recent history. Like the other
// statistics reads it degrades to an empty result instead of failing.
func (s *StatisticsService) PredictSales(ctx context.Context, q StatQuery, horizon int) []domain.StatPoint {
	if horizon <= 0 {
		horizon = defaultHorizon
	}
	province := provinceScope(q.Address)
	m := statskey.PredictSales

	history, err := repo.SalesMonthlyTotals(ctx, s.DB, repo.SalesFilter{
		Country:    q.Filters.Country,
		BrandName:  q.Filters.BrandName,
		SeriesName: q.Filters.SeriesName,
		ModelType:  q.Filters.ModelType,
		EnergyType: q.Filters.EnergyType,
		MinPrice:   q.Filters.MinPrice,
		MaxPrice:   q.Filters.MaxPrice,
		Province:   province,
	})
	if err != nil {
		log.Error().Err(err).Msg("sales history query failed")
		return []domain.StatPoint{}
	}
	if len(history) == 0 {
		return []domain.StatPoint{}
	}
	lastMonth := history[len(history)-1].Month

	// One cache entry per (scope, last actual month, filters): the forecast
	// only changes when a newer month of actuals lands.
	key := statskey.Build(m, province, lastMonth, q.Filters)
	if points, hit := s.Info.GetPoints(ctx, key); hit {
		metrics.CacheLookup(m.Type, true)
		if len(points) >= horizon {
			return points[:horizon]
		}
		return points
	}
	metrics.CacheLookup(m.Type, false)
	metrics.BackfillQuery(m.Type)

	points := forecast(history, horizon)
	s.Info.SavePoints(ctx, m, key, province, lastMonth, points)
	return points
}

// forecast projects horizon months past the last actual.
func forecast(history []repo.MonthTotal, horizon int) []domain.StatPoint {
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	level := ewma(recent)
	step := trendStep(recent)
	seasonal := seasonalFactors(history)
	lo, hi := clampBand(recent)
	lastMonth := recent[len(recent)-1].Month

	points := make([]domain.StatPoint, 0, horizon)
	compound := 1.0
	for k := 1; k <= horizon; k++ {
		month := utils.AddMonths(lastMonth, k)
		compound *= step
		value := level * compound * seasonal[utils.MonthOf(month)]
		if value < lo {
			value = lo
		}
		if value > hi {
			value = hi
		}
		rounded := int(math.Round(value))
		points = append(points, domain.StatPoint{
			Name:        fmt.Sprintf("%d-%02d", month/100, month%100),
			Value:       rounded,
			Month:       month,
			TooltipText: fmt.Sprintf("%d-%02d 预测: %d", month/100, month%100, rounded),
		})
	}
	return points
}

// ewma computes the exponentially weighted average of the totals, newest
// month weighted highest.
func ewma(recent []repo.MonthTotal) float64 {
	var weighted, weights float64
	w := 1.0
	for i := len(recent) - 1; i >= 0; i-- {
		weighted += w * float64(recent[i].Value)
		weights += w
		w *= ewmaDecay
	}
	return weighted / weights
}

// trendStep derives the per-month growth factor from the ratio of the last
// three months to the three before, clamped to [0.8, 1.2]. The ratio spans
// three months, so the monthly step is its cube root. Histories shorter than
// six months carry no usable trend.
func trendStep(recent []repo.MonthTotal) float64 {
	if len(recent) < 6 {
		return 1.0
	}
	var last3, prior3 float64
	for _, t := range recent[len(recent)-3:] {
		last3 += float64(t.Value)
	}
	for _, t := range recent[len(recent)-6 : len(recent)-3] {
		prior3 += float64(t.Value)
	}
	if prior3 <= 0 {
		return 1.0
	}
	ratio := last3 / prior3
	if ratio < 0.8 {
		ratio = 0.8
	}
	if ratio > 1.2 {
		ratio = 1.2
	}
	return math.Cbrt(ratio)
}

// seasonalFactors computes a multiplier per calendar month: the month's mean
// over the overall mean, clamped to [0.6, 1.4]. A month backed by a single
// sample is dampened halfway toward 1.0. Months without history get 1.0.
func seasonalFactors(history []repo.MonthTotal) map[int]float64 {
	factors := make(map[int]float64, 12)
	for m := 1; m <= 12; m++ {
		factors[m] = 1.0
	}

	var overall float64
	for _, t := range history {
		overall += float64(t.Value)
	}
	mean := overall / float64(len(history))
	if mean <= 0 {
		return factors
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, t := range history {
		m := utils.MonthOf(t.Month)
		sums[m] += float64(t.Value)
		counts[m]++
	}
	for m, sum := range sums {
		f := (sum / float64(counts[m])) / mean
		if f < 0.6 {
			f = 0.6
		}
		if f > 1.4 {
			f = 1.4
		}
		if counts[m] == 1 {
			f = 1 + (f-1)/2
		}
		factors[m] = f
	}
	return factors
}

// clampBand bounds forecasts to [0.6·min, 1.3·max] of the recent actuals.
func clampBand(recent []repo.MonthTotal) (lo, hi float64) {
	min := float64(recent[0].Value)
	max := min
	for _, t := range recent[1:] {
		v := float64(t.Value)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return 0.6 * min, 1.3 * max
}
