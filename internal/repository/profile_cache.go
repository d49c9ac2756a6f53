package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tutor-accounts/internal/config"
	"github.com/iliyamo/tutor-accounts/internal/model"
)

// ProfileCache keeps sanitized user profiles in Redis. A nil client or a
// disabled config turns every call into a no-op miss, so callers never need
// to check whether caching is on.
type ProfileCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewProfileCache(cfg config.CacheConfig, rdb *redis.Client) *ProfileCache {
	if !cfg.Enabled {
		rdb = nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{rdb: rdb, ttl: ttl, prefix: cfg.Prefix}
}

func (c *ProfileCache) key(id int64) string {
	return fmt.Sprintf("%s:user:%d", c.prefix, id)
}

// Get returns the cached profile. Redis errors count as a miss.
func (c *ProfileCache) Get(ctx context.Context, id int64) (model.PublicUser, bool) {
	if c.rdb == nil {
		return model.PublicUser{}, false
	}
	bs, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return model.PublicUser{}, false
	}
	var u model.PublicUser
	if err := json.Unmarshal(bs, &u); err != nil {
		return model.PublicUser{}, false
	}
	return u, true
}

func (c *ProfileCache) Set(ctx context.Context, u model.PublicUser) error {
	if c.rdb == nil {
		return nil
	}
	bs, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(u.ID), bs, c.ttl).Err()
}

// Invalidate drops the cached profile for id.
func (c *ProfileCache) Invalidate(ctx context.Context, id int64) error {
	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Del(ctx, c.key(id)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
