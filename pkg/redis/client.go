// Package redis wraps go-redis with the handful of operations the back
// office needs: plain values, fixed-window counters, optimistic document
// updates and token-guarded keys.
package redis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 5

// ErrNil is returned by Get when the key does not exist.
var ErrNil = redis.Nil

// ErrNoConnection is returned by operations that need a live connection.
var ErrNoConnection = errors.New("redis client not initialized")

// cmdable is the slice of go-redis used for single-key commands. Tests
// substitute an in-memory version.
type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	ExpireNX(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client is the back office's redis handle. raw backs the operations that
// need transactions or scripts.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// IdempotencyStore is what the idempotency middleware needs.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Set(context.Context, string, any, time.Duration) error
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// New connects and pings before returning.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis at %s: %w", opts.Addr, err), raw.Close())
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"redis_addr": opts.Addr,
			"redis_db":   opts.DB,
		}), "redis.connected")
	}
	return &Client{store: raw, raw: raw}, nil
}

// optionsFromConfig prefers LITCAFE_REDIS_URL; pool and timeout settings
// fill whatever the URL leaves unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
		opts.DB = cmp.Or(opts.DB, cfg.DB)
	case cfg.Address == "":
		return nil, errors.New("redis url or address is required")
	}
	opts.PoolSize = cmp.Or(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = cmp.Or(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = cmp.Or(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = cmp.Or(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = cmp.Or(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return ErrNoConnection
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns ErrNil for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", ErrNoConnection
	}
	return c.store.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, ErrNoConnection
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.store == nil {
		return ErrNoConnection
	}
	return c.store.Del(ctx, keys...).Err()
}

// FixedWindowAllow counts one hit against scope and reports whether the
// count is still within limit. The window starts at the first hit. EXPIRE NX
// runs on every hit so a counter left without a TTL heals itself.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.store == nil {
		return false, 0, ErrNoConnection
	}
	key := c.RateLimitKey(scope)
	count, err := c.store.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if window > 0 {
		if err := c.store.ExpireNX(ctx, key, window).Err(); err != nil {
			return false, count, err
		}
	}
	return count <= limit, count, nil
}

// Update performs an optimistic read-modify-write of a single string value.
// fn receives the current value ("" when absent) and returns the replacement.
// The write is retried when another client modifies key in between.
func (c *Client) Update(ctx context.Context, key string, fn func(current string) (string, error)) error {
	if c.raw == nil {
		return ErrNoConnection
	}
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}
	for range maxWatchRetries {
		if err := c.raw.Watch(ctx, txf, key); !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update %s: gave up after %d conflicting writes", key, maxWatchRetries)
}

// Owned-value scripts compare the stored token before touching the key, so
// a holder whose TTL lapsed cannot delete or extend a newer holder's key.
var (
	deleteIfValueScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)
	expireIfValueScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// DeleteIfValue removes key when it still holds value. It reports whether a
// key was removed.
func (c *Client) DeleteIfValue(ctx context.Context, key, value string) (bool, error) {
	if c.raw == nil {
		return false, ErrNoConnection
	}
	n, err := deleteIfValueScript.Run(ctx, c.raw, []string{key}, value).Int64()
	return n == 1, err
}

// ExpireIfValue resets the TTL of key when it still holds value. It reports
// whether the TTL was reset.
func (c *Client) ExpireIfValue(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if c.raw == nil {
		return false, ErrNoConnection
	}
	n, err := expireIfValueScript.Run(ctx, c.raw, []string{key}, value, ttl.Milliseconds()).Int64()
	return n == 1, err
}

func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return ErrNoConnection
	}
	return c.store.Ping(ctx).Err()
}

// Close is a no-op on a client that never connected.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
