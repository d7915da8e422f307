// internal/store/redis.go
//
// Redis-backed Store for running several server instances behind one
// load balancer. Sessions are stored as JSON snapshots under
// "tenpair:session:<id>" with a sliding TTL; Get restores a fresh
// *game.Session on every call, so callers must Save after mutating.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/tenpair/internal/game"
)

const keyPrefix = "tenpair:session:"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl keeps keys forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (r *redisStore) Save(ctx context.Context, s *game.Session) error {
	b, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := r.rdb.Set(ctx, key(s.ID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.ID, err)
	}
	return nil
}

// Get restores the session and pushes its expiry out by another ttl.
func (r *redisStore) Get(ctx context.Context, id string) (*game.Session, error) {
	cmd := r.rdb.Get(ctx, key(id))
	if r.ttl > 0 {
		cmd = r.rdb.GetEx(ctx, key(id), r.ttl)
	}
	b, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return game.Restore(snap)
}

func (r *redisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, key(id)).Err()
}
