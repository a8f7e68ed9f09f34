package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/litcafe/backoffice/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for i, want := range []bool{true, true, false} {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:ip", 2, time.Second)
		if err != nil {
			t.Fatalf("hit %d: unexpected error: %v", i+1, err)
		}
		if allowed != want || count != int64(i+1) {
			t.Fatalf("hit %d: allowed=%v count=%d", i+1, allowed, count)
		}
	}
	key := client.RateLimitKey("login:ip")
	if mock.ttls[key] != time.Second {
		t.Fatalf("expected window ttl on %s, got %v", key, mock.ttls[key])
	}
	if mock.expireSets != 1 {
		t.Fatalf("ttl should be set once, got %d", mock.expireSets)
	}
}

func TestFixedWindowRestoresMissingTTL(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.RateLimitKey("login:email")

	// a counter that lost its ttl, e.g. after a crash between commands
	mock.incr[key] = 7
	if _, _, err := client.FixedWindowAllow(ctx, "login:email", 10, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.ttls[key] != time.Minute {
		t.Fatalf("expected ttl to be restored, got %v", mock.ttls[key])
	}
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.CartKey("emp-1")

	if err := client.Set(ctx, key, `{"lines":[]}`, time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, key)
	if err != nil || got != `{"lines":[]}` {
		t.Fatalf("unexpected get result %q %v", got, err)
	}
	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); !errors.Is(err, ErrNil) {
		t.Fatalf("expected ErrNil after delete, got %v", err)
	}
}

func TestOperationsWithoutConnection(t *testing.T) {
	ctx := context.Background()
	client := &Client{}
	if err := client.Set(ctx, "k", "v", 0); !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected ErrNoConnection, got %v", err)
	}
	if err := client.Update(ctx, "k", func(string) (string, error) { return "", nil }); !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected ErrNoConnection from Update, got %v", err)
	}
	if _, _, err := client.FixedWindowAllow(ctx, "k", 1, time.Second); !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected ErrNoConnection from FixedWindowAllow, got %v", err)
	}
	if _, err := client.DeleteIfValue(ctx, "k", "owner"); !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected ErrNoConnection from DeleteIfValue, got %v", err)
	}
	if _, err := client.ExpireIfValue(ctx, "k", "owner", time.Second); !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected ErrNoConnection from ExpireIfValue, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without connection should be a no-op: %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	tests := map[string]string{
		client.IdempotencyKey("pos_sale", "abc"): "lit:idempotency:pos_sale:abc",
		client.RateLimitKey("login:ip:1.2.3.4"):  "lit:rate_limit:login:ip:1.2.3.4",
		client.AccessSessionKey("jti"):           "lit:session:access:jti",
		client.CartKey(" emp-1 "):                "lit:cart:emp-1",
		client.LockKey("cron"):                   "lit:lock:cron",
		client.IdempotencyKey("scope", ""):       "lit:idempotency:scope",
	}
	for got, want := range tests {
		if got != want {
			t.Fatalf("unexpected key %q, want %q", got, want)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 3 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected missing url and address to fail")
	}
}

type mockCmdable struct {
	data       map[string]string
	incr       map[string]int64
	ttls       map[string]time.Duration
	expireSets int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) ExpireNX(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if _, ok := m.ttls[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.ttls[key] = expiration
	m.expireSets++
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
