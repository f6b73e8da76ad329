// Package statskey builds the deterministic cache keys used by the
// statistics pipeline and declares the per-metric namespaces.
//
// A key is the metric's common prefix, optionally the province scope, the
// YYYYMM month, and every filter dimension in a fixed order (country, brand,
// series, model type, energy type, min price, max price), joined by ":" with
// the literal "all" standing in for unset filters. Two requests with the same
// metric, scope, month, and filter set therefore always produce the same key,
// and changing any single filter value changes it.
package statskey

import (
	"strconv"
	"strings"
)

// Delimiter joins key segments.
const Delimiter = ":"

// Wildcard is the placeholder rendered for an unset filter dimension.
const Wildcard = "all"

// Metric identifies one statistics namespace inside the shared cache table.
type Metric struct {
	// CommonKey is the key prefix shared by all entries of the metric.
	CommonKey string
	// Type is the stored row type discriminator.
	Type string
	// Name is the display name written to the cache row.
	Name string
}

// The statistics metric namespaces.
var (
	MapSales     = Metric{CommonKey: "car:statistics:map:sales", Type: "1", Name: "销售地图城市统计"}
	PriceSales   = Metric{CommonKey: "car:statistics:price:sales", Type: "2", Name: "价格销量统计"}
	EnergySales  = Metric{CommonKey: "car:statistics:energy:type:sales", Type: "3", Name: "能源类型销量统计"}
	BrandSales   = Metric{CommonKey: "car:statistics:brand:sales", Type: "4", Name: "品牌销量统计"}
	CountrySales = Metric{CommonKey: "car:statistics:country:sales", Type: "5", Name: "国家销量统计"}
	ModelSales   = Metric{CommonKey: "car:statistics:model:sales", Type: "6", Name: "车型销量统计"}
	SeriesSales  = Metric{CommonKey: "car:statistics:series:sales", Type: "7", Name: "车系销量统计"}
	PredictSales = Metric{CommonKey: "car:statistics:predict:sales", Type: "8", Name: "销量预测统计"}
)

// Filters carries the non-geographic filter dimensions of a statistics query.
// Nil/empty fields are wildcards.
type Filters struct {
	Country    string
	BrandName  string
	SeriesName string
	ModelType  string
	EnergyType string
	MinPrice   *float64
	MaxPrice   *float64
}

// Build constructs the cache key for one (metric, scope, month, filter set).
// province is empty for nationwide entries; its segment is omitted in that
// case so nationwide and province keys can never collide.
func Build(m Metric, province string, month int, f Filters) string {
	parts := make([]string, 0, 10)
	parts = append(parts, m.CommonKey)
	if province != "" {
		parts = append(parts, province)
	}
	parts = append(parts,
		strconv.Itoa(month),
		orWildcard(f.Country),
		orWildcard(f.BrandName),
		orWildcard(f.SeriesName),
		orWildcard(f.ModelType),
		orWildcard(f.EnergyType),
		priceOrWildcard(f.MinPrice),
		priceOrWildcard(f.MaxPrice),
	)
	return strings.Join(parts, Delimiter)
}

func orWildcard(s string) string {
	if s == "" {
		return Wildcard
	}
	return s
}

func priceOrWildcard(v *float64) string {
	if v == nil {
		return Wildcard
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ExtractProvince returns the province part of a full address string
// ("江苏省 苏州市" → "江苏省"). Addresses without a space (municipalities)
// are returned unchanged.
func ExtractProvince(address string) string {
	if address == "" {
		return ""
	}
	if i := strings.IndexByte(address, ' '); i >= 0 {
		return address[:i]
	}
	return address
}

// SplitCity returns the city part of a full address string, dropping the
// province prefix when present.
func SplitCity(address string) string {
	if i := strings.IndexByte(address, ' '); i >= 0 {
		return address[i+1:]
	}
	return address
}
