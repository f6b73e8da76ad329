// Package services – monthly sales data maintenance.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/pricing"
	"github.com/yyang/go-car-backend/internal/repo"
	"github.com/yyang/go-car-backend/internal/statskey"
)

// SalesService provides the admin CRUD and batch import for monthly sales
// rows. Sales rows feed the statistics aggregation pipeline, so imports
// normalize the fields the pipeline filters on.
type SalesService struct {
	DB *gorm.DB
}

// CreateSales inserts one sales row.
func (s *SalesService) CreateSales(ctx context.Context, row *domain.Sales) error {
	normalizeSalesRow(row)
	return repo.CreateSales(ctx, s.DB, row)
}

// GetSales fetches one sales row by id.
func (s *SalesService) GetSales(ctx context.Context, id int64) (*domain.Sales, error) {
	return repo.GetSales(ctx, s.DB, id)
}

// ListSales returns sales rows matching the filter.
func (s *SalesService) ListSales(ctx context.Context, f repo.SalesFilter) ([]domain.Sales, error) {
	return repo.ListSales(ctx, s.DB, f)
}

// UpdateSales saves an edited sales row.
func (s *SalesService) UpdateSales(ctx context.Context, row *domain.Sales) error {
	normalizeSalesRow(row)
	return repo.UpdateSales(ctx, s.DB, row)
}

// DeleteSales removes sales rows by id.
func (s *SalesService) DeleteSales(ctx context.Context, ids []int64) (int64, error) {
	return repo.DeleteSalesByIDs(ctx, s.DB, ids)
}

// ImportSales inserts rows one by one and reports the per-row outcome in the
// same format as the series import.
func (s *SalesService) ImportSales(ctx context.Context, rows []domain.Sales) (string, error) {
	if len(rows) == 0 {
		return "", ErrEmptyImport
	}
	report := &importReport{}
	for i := range rows {
		row := &rows[i]
		display := fmt.Sprintf("%s %s", row.SeriesName, row.CityFullName)
		if err := s.importOne(ctx, row); err != nil {
			report.failure(display, err.Error())
			continue
		}
		report.success(display)
	}
	return report.result()
}

func (s *SalesService) importOne(ctx context.Context, row *domain.Sales) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("series", row.SeriesName).Msg("sales import row panicked")
			err = fmt.Errorf("数据异常: %v", r)
		}
	}()

	if row.SeriesName == "" {
		return errors.New("车系名称不能为空")
	}
	if row.Month < 190001 || row.Month%100 == 0 || row.Month%100 > 12 {
		return errors.New("月份格式不正确")
	}
	normalizeSalesRow(row)
	return repo.CreateSales(ctx, s.DB, row)
}

// normalizeSalesRow derives the fields the statistics pipeline relies on:
// the short city name from the full "province city" value and the month date
// from the YYYYMM integer. Price strings like "8.98万" are accepted through
// ParseAmount by import mappers before the row reaches this point.
func normalizeSalesRow(row *domain.Sales) {
	if row.CityName == "" && row.CityFullName != "" {
		row.CityName = statskey.SplitCity(row.CityFullName)
	}
	if row.MonthDate == nil && row.Month > 0 {
		t := time.Date(row.Month/100, time.Month(row.Month%100), 1, 0, 0, 0, 0, time.UTC)
		row.MonthDate = &t
	}
}

// ParseSalesPrice converts a spreadsheet price cell such as "8.98万" or
// "16万" to yuan. Dashes and empty cells report ok=false.
func ParseSalesPrice(cell string) (float64, bool) {
	return pricing.ParseAmount(cell)
}
