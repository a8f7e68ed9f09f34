package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisclient "github.com/litcafe/backoffice/pkg/redis"
)

const defaultLockTTL = 10 * time.Minute

// ErrLockLost is returned when a held lock expired and was taken by another
// worker before this one finished its cycle.
var ErrLockLost = errors.New("cron lock lost")

// Lock serialises cron cycles across workers and litctl.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	// Extend pushes the expiry of a held lock back by its full TTL.
	Extend(ctx context.Context) error
	Release(ctx context.Context) error
}

type tokenStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ExpireIfValue(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
}

var _ tokenStore = (*redisclient.Client)(nil)

// RedisLock holds a named key whose value is a per-acquisition token. Only
// the holder of the token can extend or release it.
type RedisLock struct {
	store tokenStore
	key   string
	ttl   time.Duration
	token string
}

// NewRedisLock builds a lock on key. Use the client's LockKey so the API,
// the worker and litctl contend for the same name.
func NewRedisLock(store tokenStore, key string, ttl time.Duration) (*RedisLock, error) {
	switch {
	case store == nil:
		return nil, errors.New("cron lock: redis client required")
	case key == "":
		return nil, errors.New("cron lock: key required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

func (l *RedisLock) Extend(ctx context.Context) error {
	if l.token == "" {
		return ErrLockLost
	}
	ok, err := l.store.ExpireIfValue(ctx, l.key, l.token, l.ttl)
	if err != nil {
		return fmt.Errorf("extend %s: %w", l.key, err)
	}
	if !ok {
		l.token = ""
		return ErrLockLost
	}
	return nil
}

// Release is a no-op when the lock is not held or already belongs to
// someone else.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""
	if _, err := l.store.DeleteIfValue(ctx, l.key, token); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
