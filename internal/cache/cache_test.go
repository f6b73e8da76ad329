package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	in := []payload{{Name: "江苏省", Value: 1200}, {Name: "浙江省", Value: 900}}
	store.SetJSON(ctx, "stats:test", in)

	var out []payload
	if !store.GetJSON(ctx, "stats:test", &out) {
		t.Fatalf("expected cache hit")
	}
	if len(out) != 2 || out[0].Name != "江苏省" || out[1].Value != 900 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestStore_MissOnAbsentKey(t *testing.T) {
	store, _ := newTestStore(t)
	var out []payload
	if store.GetJSON(context.Background(), "absent", &out) {
		t.Fatalf("absent key should miss")
	}
}

func TestStore_MalformedEntryDeletedAndMissed(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := mr.Set("bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var out []payload
	if store.GetJSON(ctx, "bad", &out) {
		t.Fatalf("malformed entry should miss")
	}
	if mr.Exists("bad") {
		t.Fatalf("malformed entry should be deleted")
	}
}

func TestStore_EntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	store.SetJSON(ctx, "ttl", payload{Name: "x"})
	mr.FastForward(2 * time.Minute)

	var out payload
	if store.GetJSON(ctx, "ttl", &out) {
		t.Fatalf("expired entry should miss")
	}
}

func TestStore_Delete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	store.SetJSON(ctx, "a", payload{})
	store.SetJSON(ctx, "b", payload{})
	store.Delete(ctx, "a", "b")
	if mr.Exists("a") || mr.Exists("b") {
		t.Fatalf("deleted keys still present")
	}
}

func TestStore_NilReceiverSafe(t *testing.T) {
	var store *Store
	ctx := context.Background()

	var out payload
	if store.GetJSON(ctx, "k", &out) {
		t.Fatalf("nil store should always miss")
	}
	store.SetJSON(ctx, "k", payload{}) // must not panic
	store.Delete(ctx, "k")
}

func TestNew_DefaultTTL(t *testing.T) {
	s := New(nil, 0)
	if s.ttl != time.Hour {
		t.Fatalf("default ttl = %v; want 1h", s.ttl)
	}
}
