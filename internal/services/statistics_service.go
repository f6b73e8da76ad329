// Package services – statistics aggregation pipeline.
//
// One parameterized pipeline serves every sales metric: the requested month
// range is expanded, each (scope, month) is looked up in the cache store, and
// only the missing months hit the sales table. A nationwide request backfills
// one entry per discovered province per month (including empty ones) plus the
// nationwide summary, so a later province-scoped request for the same months
// is served entirely from cache.
//
// Statistics reads never fail the caller: query errors are logged and the
// affected months simply contribute no points.
package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/metrics"
	"github.com/yyang/go-car-backend/internal/pricing"
	"github.com/yyang/go-car-backend/internal/repo"
	"github.com/yyang/go-car-backend/internal/statskey"
	"github.com/yyang/go-car-backend/internal/utils"
)

// nationwideAddress is the full-country address some clients send instead of
// an empty one; both mean the nationwide scope.
const nationwideAddress = "中华人民共和国"

// StatQuery is a statistics request: an optional address scope, an inclusive
// YYYYMM month range, and the filter dimensions.
type StatQuery struct {
	Address    string
	StartMonth int
	EndMonth   int
	Filters    statskey.Filters
}

// provinceScope maps the request address onto the cache scope: empty for
// nationwide, the province prefix otherwise.
func provinceScope(address string) string {
	if address == "" || address == nationwideAddress {
		return ""
	}
	return statskey.ExtractProvince(address)
}

// StatisticsService answers the sales statistics queries behind the admin
// dashboards.
type StatisticsService struct {
	DB   *gorm.DB
	Info *StatisticsInfoService
}

// aggregateFn runs one metric's aggregation for a single-month filter and
// returns the display points. The filter's Province field tells the
// implementation which scope it is serving.
type aggregateFn func(ctx context.Context, sf repo.SalesFilter) ([]domain.StatPoint, error)

// MapSales returns the sales map statistics: per-province totals nationwide,
// per-city totals within one province.
func (s *StatisticsService) MapSales(ctx context.Context, q StatQuery) []domain.StatPoint {
	return s.queryMonths(ctx, statskey.MapSales, q, s.mapAggregate)
}

// EnergySales returns sales totals grouped by energy type.
func (s *StatisticsService) EnergySales(ctx context.Context, q StatQuery) []domain.StatPoint {
	return s.queryMonths(ctx, statskey.EnergySales, q, s.dimensionAggregate("energy_type"))
}

// BrandSales returns sales totals grouped by brand.
func (s *StatisticsService) BrandSales(ctx context.Context, q StatQuery) []domain.StatPoint {
	return s.queryMonths(ctx, statskey.BrandSales, q, s.dimensionAggregate("brand_name"))
}

// CountrySales returns sales totals grouped by country of origin.
func (s *StatisticsService) CountrySales(ctx context.Context, q StatQuery) []domain.StatPoint {
	return s.queryMonths(ctx, statskey.CountrySales, q, s.dimensionAggregate("country"))
}

// ModelSales returns sales totals grouped by model type.
func (s *StatisticsService) ModelSales(ctx context.Context, q StatQuery) []domain.StatPoint {
	return s.queryMonths(ctx, statskey.ModelSales, q, s.dimensionAggregate("model_type"))
}

// SeriesSales returns sales totals grouped by series.
func (s *StatisticsService) SeriesSales(ctx context.Context, q StatQuery) []domain.StatPoint {
	return s.queryMonths(ctx, statskey.SeriesSales, q, s.dimensionAggregate("series_name"))
}

// PriceSales returns sales totals grouped by price bucket.
func (s *StatisticsService) PriceSales(ctx context.Context, q StatQuery) []domain.StatPoint {
	return s.queryMonths(ctx, statskey.PriceSales, q, s.priceAggregate)
}

// queryMonths is the shared cache-then-backfill pipeline.
func (s *StatisticsService) queryMonths(ctx context.Context, m statskey.Metric, q StatQuery, agg aggregateFn) []domain.StatPoint {
	months := utils.MonthRange(q.StartMonth, q.EndMonth)
	if len(months) == 0 {
		return []domain.StatPoint{}
	}
	province := provinceScope(q.Address)

	results := make([]domain.StatPoint, 0)
	var uncached []int
	for _, month := range months {
		key := statskey.Build(m, province, month, q.Filters)
		points, hit := s.Info.GetPoints(ctx, key)
		metrics.CacheLookup(m.Type, hit)
		if hit {
			results = append(results, points...)
			continue
		}
		uncached = append(uncached, month)
	}
	if len(uncached) == 0 {
		return results
	}

	if province == "" {
		results = s.backfillNationwide(ctx, m, q, uncached, agg, results)
	} else {
		results = s.backfillProvince(ctx, m, province, q, uncached, agg, results)
	}
	return results
}

// backfillNationwide computes the uncached months of a nationwide request.
// For every month it writes one cache entry per province discovered anywhere
// in the uncached range (empty entries included, so provinces without data
// stop missing) plus the nationwide summary entry that feeds the response.
func (s *StatisticsService) backfillNationwide(ctx context.Context, m statskey.Metric, q StatQuery, uncached []int, agg aggregateFn, results []domain.StatPoint) []domain.StatPoint {
	provinces, err := s.discoverProvinces(ctx, m, q, uncached)
	if err != nil {
		log.Error().Err(err).Str("metric", m.CommonKey).Msg("province discovery failed")
		return results
	}

	for _, month := range uncached {
		for _, prov := range provinces {
			metrics.BackfillQuery(m.Type)
			points, err := agg(ctx, salesFilter(month, prov, q.Filters))
			if err != nil {
				log.Error().Err(err).Str("metric", m.CommonKey).Int("month", month).Str("province", prov).Msg("statistics backfill failed")
				continue
			}
			key := statskey.Build(m, prov, month, q.Filters)
			s.Info.SavePoints(ctx, m, key, prov, month, points)
		}

		metrics.BackfillQuery(m.Type)
		points, err := agg(ctx, salesFilter(month, "", q.Filters))
		if err != nil {
			log.Error().Err(err).Str("metric", m.CommonKey).Int("month", month).Msg("statistics backfill failed")
			continue
		}
		key := statskey.Build(m, "", month, q.Filters)
		s.Info.SavePoints(ctx, m, key, "", month, points)
		results = append(results, points...)
	}
	return results
}

// backfillProvince computes the uncached months of a province-scoped request,
// one cache entry per month.
func (s *StatisticsService) backfillProvince(ctx context.Context, m statskey.Metric, province string, q StatQuery, uncached []int, agg aggregateFn, results []domain.StatPoint) []domain.StatPoint {
	for _, month := range uncached {
		metrics.BackfillQuery(m.Type)
		points, err := agg(ctx, salesFilter(month, province, q.Filters))
		if err != nil {
			log.Error().Err(err).Str("metric", m.CommonKey).Int("month", month).Str("province", province).Msg("statistics backfill failed")
			continue
		}
		key := statskey.Build(m, province, month, q.Filters)
		s.Info.SavePoints(ctx, m, key, province, month, points)
		results = append(results, points...)
	}
	return results
}

// discoverProvinces lists every province with sales rows in the uncached
// month range under the request filters, sorted for deterministic cache
// write order.
func (s *StatisticsService) discoverProvinces(ctx context.Context, m statskey.Metric, q StatQuery, uncached []int) ([]string, error) {
	seen := make(map[string]struct{})
	for _, month := range uncached {
		metrics.BackfillQuery(m.Type)
		rows, err := repo.SalesCityStats(ctx, s.DB, salesFilter(month, "", q.Filters))
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			seen[statskey.ExtractProvince(row.CityFullName)] = struct{}{}
		}
	}
	provinces := make([]string, 0, len(seen))
	for p := range seen {
		provinces = append(provinces, p)
	}
	sort.Strings(provinces)
	return provinces, nil
}

// salesFilter narrows the query filters to a single month and province scope.
func salesFilter(month int, province string, f statskey.Filters) repo.SalesFilter {
	return repo.SalesFilter{
		StartMonth: month,
		EndMonth:   month,
		Country:    f.Country,
		BrandName:  f.BrandName,
		SeriesName: f.SeriesName,
		ModelType:  f.ModelType,
		EnergyType: f.EnergyType,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		Province:   province,
	}
}

// mapAggregate serves the sales map metric. Nationwide scope sums cities into
// their provinces; province scope returns per-city points with the province
// prefix stripped.
func (s *StatisticsService) mapAggregate(ctx context.Context, sf repo.SalesFilter) ([]domain.StatPoint, error) {
	rows, err := repo.SalesCityStats(ctx, s.DB, sf)
	if err != nil {
		return nil, err
	}

	if sf.Province == "" {
		byProvince := make(map[string]*domain.StatPoint)
		order := make([]string, 0)
		for _, row := range rows {
			prov := statskey.ExtractProvince(row.CityFullName)
			pt, ok := byProvince[prov]
			if !ok {
				pt = &domain.StatPoint{Name: prov, Month: row.Month}
				byProvince[prov] = pt
				order = append(order, prov)
			}
			pt.Value += row.Value
		}
		points := make([]domain.StatPoint, 0, len(order))
		for _, prov := range order {
			pt := byProvince[prov]
			pt.TooltipText = fmt.Sprintf("%s: %d", pt.Name, pt.Value)
			points = append(points, *pt)
		}
		return points, nil
	}

	points := make([]domain.StatPoint, 0, len(rows))
	for _, row := range rows {
		city := statskey.SplitCity(row.CityFullName)
		points = append(points, domain.StatPoint{
			Name:        city,
			Value:       row.Value,
			Month:       row.Month,
			TooltipText: fmt.Sprintf("%s: %d", city, row.Value),
		})
	}
	return points, nil
}

// dimensionAggregate builds the aggregator for one dimension column.
func (s *StatisticsService) dimensionAggregate(column string) aggregateFn {
	return func(ctx context.Context, sf repo.SalesFilter) ([]domain.StatPoint, error) {
		rows, err := repo.SalesDimensionStats(ctx, s.DB, column, sf)
		if err != nil {
			return nil, err
		}
		points := make([]domain.StatPoint, 0, len(rows))
		for _, row := range rows {
			if row.Label == "" {
				continue
			}
			points = append(points, domain.StatPoint{
				Name:        row.Label,
				Value:       row.Value,
				Month:       row.Month,
				TooltipText: fmt.Sprintf("%s: %d", row.Label, row.Value),
			})
		}
		return points, nil
	}
}

// priceAggregate folds per-price rows into the configured display buckets.
func (s *StatisticsService) priceAggregate(ctx context.Context, sf repo.SalesFilter) ([]domain.StatPoint, error) {
	rows, err := repo.SalesPriceStats(ctx, s.DB, sf)
	if err != nil {
		return nil, err
	}
	breakpoints := loadBreakpoints(ctx, s.DB)

	byBucket := make(map[string]*domain.StatPoint)
	order := make([]string, 0)
	for _, row := range rows {
		if row.MinPrice == nil {
			continue
		}
		label := pricing.BucketLabel(*row.MinPrice, breakpoints)
		pt, ok := byBucket[label]
		if !ok {
			pt = &domain.StatPoint{Name: label, Month: row.Month}
			byBucket[label] = pt
			order = append(order, label)
		}
		pt.Value += row.Value
	}
	points := make([]domain.StatPoint, 0, len(order))
	for _, label := range order {
		pt := byBucket[label]
		pt.TooltipText = fmt.Sprintf("%s: %d", pt.Name, pt.Value)
		points = append(points, *pt)
	}
	return points, nil
}
