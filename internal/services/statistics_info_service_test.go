package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/yyang/go-car-backend/internal/cache"
	"github.com/yyang/go-car-backend/internal/domain"
	"github.com/yyang/go-car-backend/internal/repo"
	"github.com/yyang/go-car-backend/internal/statskey"
)

func newInfoService(t *testing.T, withRedis bool) *StatisticsInfoService {
	t.Helper()
	svc := &StatisticsInfoService{DB: newTestDB(t)}
	if withRedis {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		svc.Cache = cache.New(client, time.Hour)
	}
	return svc
}

func TestGetPoints_MissThenRoundTrip(t *testing.T) {
	for _, withRedis := range []bool{false, true} {
		svc := newInfoService(t, withRedis)
		ctx := context.Background()
		m := statskey.BrandSales
		key := statskey.Build(m, "", 202501, statskey.Filters{})

		if _, hit := svc.GetPoints(ctx, key); hit {
			t.Fatalf("withRedis=%v: expected miss on empty store", withRedis)
		}

		points := []domain.StatPoint{{Name: "宝马", Value: 250, Month: 202501}}
		svc.SavePoints(ctx, m, key, "", 202501, points)

		got, hit := svc.GetPoints(ctx, key)
		if !hit || len(got) != 1 || got[0] != points[0] {
			t.Fatalf("withRedis=%v: got %v hit=%v", withRedis, got, hit)
		}
	}
}

func TestGetPoints_EmptyEntryIsAHit(t *testing.T) {
	svc := newInfoService(t, false)
	ctx := context.Background()
	m := statskey.MapSales
	key := statskey.Build(m, "青海省", 202411, statskey.Filters{})

	svc.SavePoints(ctx, m, key, "青海省", 202411, nil)

	got, hit := svc.GetPoints(ctx, key)
	if !hit {
		t.Fatal("empty entry should count as a hit")
	}
	if len(got) != 0 {
		t.Fatalf("got %v; want empty", got)
	}

	row, err := repo.GetStatisticsInfoByKey(ctx, svc.DB, key)
	if err != nil {
		t.Fatalf("row missing: %v", err)
	}
	if row.Content != "[]" {
		t.Fatalf("content = %q; want []", row.Content)
	}
	if row.Name != "销售地图城市统计-青海省-202411" {
		t.Fatalf("name = %q", row.Name)
	}
}

func TestGetPoints_CorruptContentIsAMiss(t *testing.T) {
	svc := newInfoService(t, false)
	ctx := context.Background()
	key := "car:statistics:brand:sales:202501:all:all:all:all:all:all:all"

	err := repo.CreateStatisticsInfo(ctx, svc.DB, &domain.StatisticsInfo{
		Type:          statskey.BrandSales.Type,
		Name:          "bad",
		StatisticsKey: key,
		Content:       "{not json",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, hit := svc.GetPoints(ctx, key); hit {
		t.Fatal("corrupt content should read as a miss")
	}
}

func TestSavePoints_WarmsRedisForNextRead(t *testing.T) {
	svc := newInfoService(t, true)
	ctx := context.Background()
	m := statskey.EnergySales
	key := statskey.Build(m, "", 202501, statskey.Filters{})

	svc.SavePoints(ctx, m, key, "", 202501, []domain.StatPoint{{Name: "纯电动", Value: 300, Month: 202501}})

	// Remove the DB row directly; the Redis entry alone should still answer.
	row, err := repo.GetStatisticsInfoByKey(ctx, svc.DB, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := repo.DeleteStatisticsInfoByIDs(ctx, svc.DB, []string{row.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, hit := svc.GetPoints(ctx, key)
	if !hit || len(got) != 1 || got[0].Name != "纯电动" {
		t.Fatalf("got %v hit=%v; want redis-served point", got, hit)
	}
}

func TestUpdateStatisticsInfo_DropsRedisEntry(t *testing.T) {
	svc := newInfoService(t, true)
	ctx := context.Background()
	m := statskey.ModelSales
	key := statskey.Build(m, "", 202501, statskey.Filters{})

	svc.SavePoints(ctx, m, key, "", 202501, []domain.StatPoint{{Name: "SUV", Value: 100, Month: 202501}})

	row, err := repo.GetStatisticsInfoByKey(ctx, svc.DB, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	row.Content = `[{"name":"SUV","value":999,"month":202501}]`
	if err := svc.UpdateStatisticsInfo(ctx, row); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, hit := svc.GetPoints(ctx, key)
	if !hit || len(got) != 1 || got[0].Value != 999 {
		t.Fatalf("got %v hit=%v; want the edited content", got, hit)
	}
}

func TestDeleteStatisticsInfo_RemovesRowAndRedisEntry(t *testing.T) {
	svc := newInfoService(t, true)
	ctx := context.Background()
	m := statskey.SeriesSales
	key := statskey.Build(m, "", 202501, statskey.Filters{})

	svc.SavePoints(ctx, m, key, "", 202501, []domain.StatPoint{{Name: "3系", Value: 50, Month: 202501}})

	row, err := repo.GetStatisticsInfoByKey(ctx, svc.DB, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	n, err := svc.DeleteStatisticsInfo(ctx, []string{row.ID})
	if err != nil || n != 1 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	if _, hit := svc.GetPoints(ctx, key); hit {
		t.Fatal("deleted entry should miss on both tiers")
	}
}

func TestImportStatisticsInfo(t *testing.T) {
	svc := newInfoService(t, false)
	ctx := context.Background()

	if _, err := svc.ImportStatisticsInfo(ctx, nil); err != ErrEmptyImport {
		t.Fatalf("empty import err = %v; want ErrEmptyImport", err)
	}

	rows := []domain.StatisticsInfo{
		{Type: "4", Name: "品牌统计-202501", StatisticsKey: "car:statistics:brand:sales:202501:all:all:all:all:all:all:all", Content: "[]"},
		{Name: "缺key"},
	}
	msg, err := svc.ImportStatisticsInfo(ctx, rows)
	if err == nil {
		t.Fatal("import with a bad row should return the aggregate error")
	}
	var impErr *ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("err type = %T", err)
	}
	if impErr.SuccessCount != 1 || impErr.FailCount != 1 {
		t.Fatalf("counts = %d/%d; want 1/1", impErr.SuccessCount, impErr.FailCount)
	}
	if msg != "" {
		t.Fatalf("msg = %q; want empty on failure", msg)
	}

	got, hit := svc.GetPoints(ctx, rows[0].StatisticsKey)
	if !hit || len(got) != 0 {
		t.Fatalf("imported row not readable: %v hit=%v", got, hit)
	}
}
