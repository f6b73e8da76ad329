package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/repo"
)

func TestCreateSales_NormalizesDerivedFields(t *testing.T) {
	svc := &SalesService{DB: newTestDB(t)}
	ctx := context.Background()

	row := &domain.Sales{SeriesName: "汉", CityFullName: "广东省 深圳市", Month: 202501, Sales: 300}
	if err := svc.CreateSales(ctx, row); err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.CityName != "深圳市" {
		t.Fatalf("city name = %q; want 深圳市", row.CityName)
	}
	if row.MonthDate == nil || row.MonthDate.Year() != 2025 || row.MonthDate.Month() != 1 {
		t.Fatalf("month date = %v", row.MonthDate)
	}

	// A municipality has no separate city segment.
	muni := &domain.Sales{SeriesName: "Model 3", CityFullName: "上海市", Month: 202501, Sales: 100}
	if err := svc.CreateSales(ctx, muni); err != nil {
		t.Fatalf("create: %v", err)
	}
	if muni.CityName != "上海市" {
		t.Fatalf("municipality city name = %q", muni.CityName)
	}
}

func TestImportSales_MonthValidation(t *testing.T) {
	svc := &SalesService{DB: newTestDB(t)}
	ctx := context.Background()

	rows := []domain.Sales{
		{SeriesName: "汉", CityFullName: "广东省 深圳市", Month: 202501, Sales: 300},
		{SeriesName: "汉", CityFullName: "广东省 广州市", Month: 202513, Sales: 50},
		{SeriesName: "汉", CityFullName: "广东省 珠海市", Month: 202500, Sales: 50},
		{SeriesName: "汉", CityFullName: "广东省 佛山市", Month: 1, Sales: 50},
	}
	_, err := svc.ImportSales(ctx, rows)
	var impErr *ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("err = %v; want *ImportError", err)
	}
	if impErr.SuccessCount != 1 || impErr.FailCount != 3 {
		t.Fatalf("counts = %d/%d; want 1/3", impErr.SuccessCount, impErr.FailCount)
	}
	if !strings.Contains(impErr.Report, "月份格式不正确") {
		t.Fatalf("report = %q", impErr.Report)
	}

	stored, err := svc.ListSales(ctx, repo.SalesFilter{})
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored rows: %v (%d)", err, len(stored))
	}
	if stored[0].CityName != "深圳市" {
		t.Fatalf("imported row not normalized: %+v", stored[0])
	}
}

func TestImportSales_Success(t *testing.T) {
	svc := &SalesService{DB: newTestDB(t)}
	msg, err := svc.ImportSales(context.Background(), []domain.Sales{
		{SeriesName: "3系", CityFullName: "江苏省 苏州市", Month: 202501, Sales: 100},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(msg, "恭喜您，数据已全部导入成功！共 1 条") {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(msg, "3系 江苏省 苏州市") {
		t.Fatalf("row display missing: %q", msg)
	}
}

func TestImportSales_Empty(t *testing.T) {
	svc := &SalesService{DB: newTestDB(t)}
	if _, err := svc.ImportSales(context.Background(), nil); err != ErrEmptyImport {
		t.Fatalf("err = %v; want ErrEmptyImport", err)
	}
}

func TestParseSalesPrice(t *testing.T) {
	cases := []struct {
		cell string
		want float64
		ok   bool
	}{
		{"8.98万", 89800, true},
		{"16万", 160000, true},
		{"1500", 1500, true},
		{"-", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseSalesPrice(tc.cell)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseSalesPrice(%q) = %v, %v; want %v, %v", tc.cell, got, ok, tc.want, tc.ok)
		}
	}
}
