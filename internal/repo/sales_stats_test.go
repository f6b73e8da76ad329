package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
)

func seedSalesRows(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()
	rows := []*domain.Sales{
		{SeriesName: "宝马3系", BrandName: "宝马", Country: "德国", ModelType: "轿车", EnergyType: "汽油",
			CityFullName: "江苏省 苏州市", Month: 202501, Sales: 100, MinPrice: f64(299900)},
		{SeriesName: "宝马3系", BrandName: "宝马", Country: "德国", ModelType: "轿车", EnergyType: "汽油",
			CityFullName: "江苏省 南京市", Month: 202501, Sales: 150, MinPrice: f64(299900)},
		{SeriesName: "汉", BrandName: "比亚迪", Country: "中国", ModelType: "轿车", EnergyType: "纯电动",
			CityFullName: "广东省 深圳市", Month: 202501, Sales: 300, MinPrice: f64(209800)},
		{SeriesName: "汉", BrandName: "比亚迪", Country: "中国", ModelType: "轿车", EnergyType: "纯电动",
			CityFullName: "广东省 深圳市", Month: 202502, Sales: 320, MinPrice: f64(209800)},
		{SeriesName: "Model Y", BrandName: "特斯拉", Country: "美国", ModelType: "SUV", EnergyType: "纯电动",
			CityFullName: "上海市", Month: 202501, Sales: 500, MinPrice: f64(263500)},
	}
	for _, r := range rows {
		if err := CreateSales(ctx, db, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestSalesCityStats_GroupsByCityAndMonth(t *testing.T) {
	db := newTestDB(t)
	seedSalesRows(t, db)

	rows, err := SalesCityStats(context.Background(), db, SalesFilter{StartMonth: 202501, EndMonth: 202501})
	if err != nil {
		t.Fatalf("SalesCityStats: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("city groups = %d; want 4", len(rows))
	}
	byCity := make(map[string]int)
	for _, r := range rows {
		byCity[r.CityFullName] = r.Value
	}
	if byCity["江苏省 苏州市"] != 100 || byCity["广东省 深圳市"] != 300 || byCity["上海市"] != 500 {
		t.Fatalf("city sums wrong: %v", byCity)
	}
}

func TestSalesCityStats_ProvincePrefixFilter(t *testing.T) {
	db := newTestDB(t)
	seedSalesRows(t, db)

	rows, err := SalesCityStats(context.Background(), db, SalesFilter{
		StartMonth: 202501, EndMonth: 202501, Province: "江苏省",
	})
	if err != nil {
		t.Fatalf("SalesCityStats: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("province-scoped groups = %d; want 2", len(rows))
	}
}

func TestSalesDimensionStats(t *testing.T) {
	db := newTestDB(t)
	seedSalesRows(t, db)
	ctx := context.Background()

	rows, err := SalesDimensionStats(ctx, db, "brand_name", SalesFilter{StartMonth: 202501, EndMonth: 202501})
	if err != nil {
		t.Fatalf("SalesDimensionStats: %v", err)
	}
	byBrand := make(map[string]int)
	for _, r := range rows {
		byBrand[r.Label] = r.Value
	}
	if byBrand["宝马"] != 250 || byBrand["比亚迪"] != 300 || byBrand["特斯拉"] != 500 {
		t.Fatalf("brand sums wrong: %v", byBrand)
	}

	if _, err := SalesDimensionStats(ctx, db, "sales; DROP TABLE", SalesFilter{}); !errors.Is(err, gorm.ErrInvalidField) {
		t.Fatalf("arbitrary column should be rejected, got %v", err)
	}
}

func TestSalesDimensionStats_EqualityFilters(t *testing.T) {
	db := newTestDB(t)
	seedSalesRows(t, db)

	rows, err := SalesDimensionStats(context.Background(), db, "energy_type", SalesFilter{
		StartMonth: 202501, EndMonth: 202502, BrandName: "比亚迪",
	})
	if err != nil {
		t.Fatalf("SalesDimensionStats: %v", err)
	}
	var total int
	for _, r := range rows {
		total += r.Value
	}
	if total != 620 {
		t.Fatalf("filtered total = %d; want 620", total)
	}
}

func TestSalesPriceStats(t *testing.T) {
	db := newTestDB(t)
	seedSalesRows(t, db)

	rows, err := SalesPriceStats(context.Background(), db, SalesFilter{StartMonth: 202501, EndMonth: 202501})
	if err != nil {
		t.Fatalf("SalesPriceStats: %v", err)
	}
	byPrice := make(map[float64]int)
	for _, r := range rows {
		if r.MinPrice != nil {
			byPrice[*r.MinPrice] += r.Value
		}
	}
	if byPrice[299900] != 250 || byPrice[209800] != 300 {
		t.Fatalf("price sums wrong: %v", byPrice)
	}
}

func TestSalesMonthlyTotals_OrderedAscending(t *testing.T) {
	db := newTestDB(t)
	seedSalesRows(t, db)

	rows, err := SalesMonthlyTotals(context.Background(), db, SalesFilter{BrandName: "比亚迪"})
	if err != nil {
		t.Fatalf("SalesMonthlyTotals: %v", err)
	}
	if len(rows) != 2 || rows[0].Month != 202501 || rows[1].Month != 202502 {
		t.Fatalf("month order wrong: %+v", rows)
	}
	if rows[0].Value != 300 || rows[1].Value != 320 {
		t.Fatalf("month totals wrong: %+v", rows)
	}
}

func TestApplySalesFilter_PriceBounds(t *testing.T) {
	db := newTestDB(t)
	seedSalesRows(t, db)

	rows, err := ListSales(context.Background(), db, SalesFilter{MinPrice: f64(250000)})
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	for _, r := range rows {
		if r.MinPrice == nil || *r.MinPrice < 250000 {
			t.Fatalf("row below min price bound: %+v", r)
		}
	}
	if len(rows) != 3 {
		t.Fatalf("min price filter rows = %d; want 3", len(rows))
	}
}
