package repo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/yyang/go-car-backend/internal/domain"
)

func f64(v float64) *float64 { return &v }

func TestSeriesCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := &domain.Series{SeriesName: "宝马3系", BrandName: "宝马", Country: "德国", MinPrice: f64(299900)}
	if err := CreateSeries(ctx, db, s); err != nil {
		t.Fatalf("CreateSeries: %v", err)
	}
	if s.ID == 0 || s.CreateTime.IsZero() {
		t.Fatalf("id/create time not assigned: %+v", s)
	}

	got, err := GetSeries(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if got.SeriesName != "宝马3系" || got.MinPrice == nil || *got.MinPrice != 299900 {
		t.Fatalf("fetched row mismatch: %+v", got)
	}

	got.SeriesName = "宝马3系 改款"
	if err := UpdateSeries(ctx, db, got); err != nil {
		t.Fatalf("UpdateSeries: %v", err)
	}
	again, _ := GetSeries(ctx, db, s.ID)
	if again.SeriesName != "宝马3系 改款" || again.UpdateTime == nil {
		t.Fatalf("update not persisted: %+v", again)
	}

	n, err := DeleteSeriesByIDs(ctx, db, []int64{s.ID})
	if err != nil || n != 1 {
		t.Fatalf("DeleteSeriesByIDs: n=%d err=%v", n, err)
	}
	if _, err := GetSeries(ctx, db, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGetSeries_NotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := GetSeries(context.Background(), db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateSeries_NotFound(t *testing.T) {
	db := newTestDB(t)
	err := UpdateSeries(context.Background(), db, &domain.Series{ID: 42, SeriesName: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSeries_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []*domain.Series{
		{SeriesName: "宝马3系", BrandName: "宝马", Country: "德国", ModelType: "轿车"},
		{SeriesName: "宝马X5", BrandName: "宝马", Country: "德国", ModelType: "SUV"},
		{SeriesName: "汉", BrandName: "比亚迪", Country: "中国", EnergyType: "纯电动"},
	}
	for _, r := range rows {
		if err := CreateSeries(ctx, db, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := ListSeries(ctx, db, SeriesFilter{BrandName: "宝马"})
	if err != nil || len(got) != 2 {
		t.Fatalf("brand filter: len=%d err=%v", len(got), err)
	}
	got, err = ListSeries(ctx, db, SeriesFilter{SeriesName: "X5"})
	if err != nil || len(got) != 1 || got[0].SeriesName != "宝马X5" {
		t.Fatalf("name substring filter: %+v err=%v", got, err)
	}
	got, err = ListSeries(ctx, db, SeriesFilter{EnergyType: "纯电动"})
	if err != nil || len(got) != 1 || got[0].BrandName != "比亚迪" {
		t.Fatalf("energy filter: %+v err=%v", got, err)
	}
	got, err = ListSeries(ctx, db, SeriesFilter{})
	if err != nil || len(got) != 3 {
		t.Fatalf("unfiltered: len=%d err=%v", len(got), err)
	}
}

func TestSeriesByIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := &domain.Series{SeriesName: "A"}
	b := &domain.Series{SeriesName: "B"}
	for _, r := range []*domain.Series{a, b} {
		if err := CreateSeries(ctx, db, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := SeriesByIDs(ctx, db, []int64{a.ID, b.ID, 999})
	if err != nil || len(got) != 2 {
		t.Fatalf("SeriesByIDs: len=%d err=%v", len(got), err)
	}
	if got, err := SeriesByIDs(ctx, db, nil); err != nil || got != nil {
		t.Fatalf("empty id list should be nil, got %v err=%v", got, err)
	}
}

func TestSeriesScoreAverages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []*domain.Series{
		{SeriesName: "A", OverallScore: f64(4.0), ExteriorScore: f64(4.2)},
		{SeriesName: "B", OverallScore: f64(5.0), ExteriorScore: f64(4.8)},
		{SeriesName: "C"}, // NULL scores excluded from AVG
	}
	for _, r := range rows {
		if err := CreateSeries(ctx, db, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	avg, err := SeriesScoreAverages(ctx, db)
	if err != nil {
		t.Fatalf("SeriesScoreAverages: %v", err)
	}
	if math.Abs(avg.Overall-4.5) > 1e-9 {
		t.Fatalf("overall average = %v; want 4.5", avg.Overall)
	}
	if math.Abs(avg.Exterior-4.5) > 1e-9 {
		t.Fatalf("exterior average = %v; want 4.5", avg.Exterior)
	}
	if avg.Interior != 0 {
		t.Fatalf("all-NULL column average = %v; want 0", avg.Interior)
	}
}
