package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/photoshare-api/internal/logger"
	"github.com/iliyamo/photoshare-api/internal/model"
)

// DefaultSessionTTL bounds how long a cached user may lag behind the store.
const DefaultSessionTTL = 900 * time.Second

var sessionCacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "session_cache_lookups_total",
		Help: "Session cache lookups by result",
	},
	[]string{"result"},
)

// SessionCache mirrors recently loaded users keyed by email.  A miss is
// never an error; callers fall back to the user store and Put the result.
type SessionCache interface {
	Get(ctx context.Context, email string) (model.User, bool)
	Put(ctx context.Context, email string, u model.User) error
	Delete(ctx context.Context, email string) error
}

// RedisSessionCache stores JSON-encoded users in Redis with a fixed TTL.
type RedisSessionCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSessionCache returns a cache writing keys "<prefix>:<email>".
func NewRedisSessionCache(rdb *redis.Client, ttl time.Duration, prefix string) *RedisSessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if prefix == "" {
		prefix = "user"
	}
	return &RedisSessionCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *RedisSessionCache) key(email string) string { return c.prefix + ":" + email }

// Get returns the cached user.  Redis failures and undecodable entries
// count as a miss.
func (c *RedisSessionCache) Get(ctx context.Context, email string) (model.User, bool) {
	bs, err := c.rdb.Get(ctx, c.key(email)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("session cache get failed", "error", err)
			sessionCacheLookups.WithLabelValues("error").Inc()
		} else {
			sessionCacheLookups.WithLabelValues("miss").Inc()
		}
		return model.User{}, false
	}
	var u model.User
	if err := json.Unmarshal(bs, &u); err != nil {
		logger.Log.Warn("session cache entry undecodable", "error", err)
		sessionCacheLookups.WithLabelValues("error").Inc()
		return model.User{}, false
	}
	sessionCacheLookups.WithLabelValues("hit").Inc()
	return u, true
}

// Put writes u under email with the cache TTL.
func (c *RedisSessionCache) Put(ctx context.Context, email string, u model.User) error {
	bs, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.SetEx(ctx, c.key(email), bs, c.ttl).Err()
}

// Delete drops the entry for email.
func (c *RedisSessionCache) Delete(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, c.key(email)).Err()
}

// NoopSessionCache never stores anything; every lookup misses.  It is
// used when Redis is unavailable at start-up.
type NoopSessionCache struct{}

func (NoopSessionCache) Get(context.Context, string) (model.User, bool) { return model.User{}, false }
func (NoopSessionCache) Put(context.Context, string, model.User) error  { return nil }
func (NoopSessionCache) Delete(context.Context, string) error           { return nil }
