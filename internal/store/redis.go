package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atmx/fib-dozens/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Runs are immutable, so writes populate the cache directly and
// entries only leave it by expiry.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through ---

func (s *CachedStore) SaveRun(ctx context.Context, run *model.Run) error {
	if err := s.primary.SaveRun(ctx, run); err != nil {
		return err
	}
	header := *run
	header.Spins = nil
	s.cache(ctx, runKey(run.ID), &header)
	s.cache(ctx, spinsKey(run.ID), run.Spins)
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	data, err := s.rdb.Get(ctx, runKey(id)).Bytes()
	if err == nil {
		var r model.Run
		if json.Unmarshal(data, &r) == nil {
			return &r, nil
		}
	}

	// Cache miss: read from primary.
	r, err := s.primary.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, runKey(id), r)
	return r, nil
}

func (s *CachedStore) GetSpins(ctx context.Context, id string) ([]model.SpinResult, error) {
	data, err := s.rdb.Get(ctx, spinsKey(id)).Bytes()
	if err == nil {
		var spins []model.SpinResult
		if json.Unmarshal(data, &spins) == nil {
			return spins, nil
		}
	}

	spins, err := s.primary.GetSpins(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, spinsKey(id), spins)
	return spins, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListRuns(ctx context.Context) ([]model.Run, error) {
	return s.primary.ListRuns(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) cache(ctx context.Context, key string, v any) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, s.ttl)
	}
}

func runKey(id string) string   { return fmt.Sprintf("run:%s", id) }
func spinsKey(id string) string { return fmt.Sprintf("spins:%s", id) }
