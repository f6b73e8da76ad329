// Package repo – aggregate queries over the sales table feeding the
// statistics pipeline. Each query sums sales grouped by month plus one
// dimension column; the shared filter composition mirrors the list queries
// so a statistics request and a CRUD listing see the same rows.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

// SalesFilter narrows sales queries. Zero-valued fields are ignored; Months
// bound the YYYYMM month column inclusively; Province restricts rows to one
// province by matching the city_full_name prefix.
type SalesFilter struct {
	StartMonth int
	EndMonth   int
	Country    string
	BrandName  string
	SeriesName string
	ModelType  string
	EnergyType string
	MinPrice   *float64
	MaxPrice   *float64
	Province   string
}

func applySalesFilter(q *gorm.DB, f SalesFilter) *gorm.DB {
	if f.StartMonth != 0 {
		q = q.Where("month >= ?", f.StartMonth)
	}
	if f.EndMonth != 0 {
		q = q.Where("month <= ?", f.EndMonth)
	}
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.BrandName != "" {
		q = q.Where("brand_name = ?", f.BrandName)
	}
	if f.SeriesName != "" {
		q = q.Where("series_name = ?", f.SeriesName)
	}
	if f.ModelType != "" {
		q = q.Where("model_type = ?", f.ModelType)
	}
	if f.EnergyType != "" {
		q = q.Where("energy_type = ?", f.EnergyType)
	}
	if f.MaxPrice != nil {
		q = q.Where("max_price <= ?", *f.MaxPrice)
	}
	if f.MinPrice != nil {
		q = q.Where("min_price >= ?", *f.MinPrice)
	}
	if f.Province != "" {
		q = q.Where("city_full_name LIKE ?", f.Province+"%")
	}
	return q
}

// CityStat is one city-level aggregate: summed sales for a full city name
// ("province city") and month.
type CityStat struct {
	CityFullName string
	Month        int
	Value        int
}

// SalesCityStats sums sales per (city, month) under the filter.
func SalesCityStats(ctx context.Context, db *gorm.DB, f SalesFilter) ([]CityStat, error) {
	var rows []CityStat
	err := applySalesFilter(db.WithContext(ctx).Model(&domain.Sales{}), f).
		Select("city_full_name, month, SUM(sales) AS value").
		Group("city_full_name, month").
		Scan(&rows).Error
	return rows, err
}

// LabelStat is one dimension-level aggregate: summed sales for a label
// (energy type, brand, country, model type, or series name) and month.
type LabelStat struct {
	Label string
	Month int
	Value int
}

// SalesDimensionStats sums sales per (dimension value, month) for one of the
// allowed dimension columns. The column name is restricted to a fixed set so
// callers can never inject arbitrary SQL.
func SalesDimensionStats(ctx context.Context, db *gorm.DB, column string, f SalesFilter) ([]LabelStat, error) {
	switch column {
	case "energy_type", "brand_name", "country", "model_type", "series_name":
	default:
		return nil, gorm.ErrInvalidField
	}
	var rows []LabelStat
	err := applySalesFilter(db.WithContext(ctx).Model(&domain.Sales{}), f).
		Select(column + " AS label, month, SUM(sales) AS value").
		Group(column + ", month").
		Scan(&rows).Error
	return rows, err
}

// PriceStat is one price-level aggregate: summed sales for rows sharing a
// minimum price and month. Bucketing into display ranges happens in the
// service layer so the breakpoint configuration stays out of SQL.
type PriceStat struct {
	MinPrice *float64
	Month    int
	Value    int
}

// SalesPriceStats sums sales per (min_price, month) under the filter.
func SalesPriceStats(ctx context.Context, db *gorm.DB, f SalesFilter) ([]PriceStat, error) {
	var rows []PriceStat
	err := applySalesFilter(db.WithContext(ctx).Model(&domain.Sales{}), f).
		Select("min_price, month, SUM(sales) AS value").
		Group("min_price, month").
		Scan(&rows).Error
	return rows, err
}

// MonthTotal is one month's total sales count within a geography.
type MonthTotal struct {
	Month int
	Value int
}

// SalesMonthlyTotals sums sales per month under the filter, ordered by month
// ascending. It feeds the sales forecast.
func SalesMonthlyTotals(ctx context.Context, db *gorm.DB, f SalesFilter) ([]MonthTotal, error) {
	var rows []MonthTotal
	err := applySalesFilter(db.WithContext(ctx).Model(&domain.Sales{}), f).
		Select("month, SUM(sales) AS value").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}
