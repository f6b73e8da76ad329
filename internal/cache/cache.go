// Package cache provides a small TTL cache in front of the statistics table,
// backed by Redis. It is strictly best-effort: every failure (connection,
// serialization, missing key) degrades to a cache miss so the DB-backed store
// remains the source of truth. All methods are nil-receiver safe, which lets
// deployments without Redis simply pass a nil *Store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store is a Redis-backed JSON cache with a fixed TTL per entry.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps a Redis client. A non-positive ttl defaults to one hour.
func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// GetJSON loads the value stored under key into dest, reporting whether a
// usable entry was found. Malformed payloads are deleted and treated as a
// miss.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if s == nil || s.client == nil {
		return false
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding malformed cache entry")
		s.client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores v under key for the configured TTL. Failures are logged and
// otherwise ignored.
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}) {
	if s == nil || s.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Delete removes keys, ignoring failures.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("redis del failed")
	}
}
