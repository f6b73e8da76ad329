package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yyang/go-car-backend/internal/domain"
)

func TestLatestRecommend_PicksNewestSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	old := &domain.Recommend{UserID: 1, UserName: "u", ModelInfo: "{}", Content: `{"seriesIds":[1]}`, CreateTime: base}
	next := &domain.Recommend{UserID: 1, UserName: "u", ModelInfo: "{}", Content: `{"seriesIds":[2]}`, CreateTime: base.Add(time.Hour)}
	for _, r := range []*domain.Recommend{old, next} {
		if err := CreateRecommend(ctx, db, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := LatestRecommend(ctx, db, 1)
	if err != nil {
		t.Fatalf("LatestRecommend: %v", err)
	}
	if got.ID != next.ID {
		t.Fatalf("latest snapshot id = %d; want %d", got.ID, next.ID)
	}
}

func TestLatestRecommend_NotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := LatestRecommend(context.Background(), db, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRecommend_StampsCreateTime(t *testing.T) {
	db := newTestDB(t)
	r := &domain.Recommend{UserID: 1, UserName: "u", ModelInfo: "{}", Content: "{}"}
	if err := CreateRecommend(context.Background(), db, r); err != nil {
		t.Fatalf("CreateRecommend: %v", err)
	}
	if r.CreateTime.IsZero() {
		t.Fatalf("create time not stamped")
	}
}

func TestListRecommends_Filter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = CreateRecommend(ctx, db, &domain.Recommend{UserID: 1, UserName: "alice", ModelInfo: "{}", Content: "{}"})
	_ = CreateRecommend(ctx, db, &domain.Recommend{UserID: 2, UserName: "bob", ModelInfo: "{}", Content: "{}"})

	got, err := ListRecommends(ctx, db, RecommendFilter{UserName: "ali"})
	if err != nil || len(got) != 1 || got[0].UserID != 1 {
		t.Fatalf("user name filter: %+v err=%v", got, err)
	}
	got, err = ListRecommends(ctx, db, RecommendFilter{UserID: 2})
	if err != nil || len(got) != 1 || got[0].UserName != "bob" {
		t.Fatalf("user id filter: %+v err=%v", got, err)
	}
}
