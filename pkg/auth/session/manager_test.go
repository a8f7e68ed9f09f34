package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/litcafe/backoffice/pkg/config"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager(t *testing.T) (*Manager, *mockStore) {
	t.Helper()
	store := newMockStore()
	manager, err := NewManager(store, config.JWTConfig{ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager, store
}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(newMockStore(), config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30}); err == nil {
		t.Fatal("expected refresh ttl shorter than access ttl to fail")
	}
	if _, err := NewManager(nil, config.JWTConfig{ExpirationMinutes: 1, RefreshTokenTTLMinutes: 30}); err == nil {
		t.Fatal("expected nil store to fail")
	}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()

	accessID := "access-123"
	token, err := manager.Generate(ctx, accessID, "emp-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stored := store.data[store.AccessSessionKey(accessID)]
	if strings.Contains(stored, token) {
		t.Fatalf("raw refresh token must not be stored: %q", stored)
	}
	var rec record
	if err := json.Unmarshal([]byte(stored), &rec); err != nil || rec.EmployeeID != "emp-1" || rec.TokenHash != digest(token) {
		t.Fatalf("unexpected stored session %q (%v)", stored, err)
	}

	if _, _, err := manager.Rotate(ctx, accessID, "emp-1", "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
	if _, _, err := manager.Rotate(ctx, accessID, "emp-2", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected token bound to another employee to fail, got %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, "emp-1", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.data[store.AccessSessionKey(accessID)]; exists {
		t.Fatalf("old access key left behind")
	}
	if stored := store.data[store.AccessSessionKey(newAccessID)]; !strings.Contains(stored, digest(newToken)) {
		t.Fatalf("expected new token stored, got %q", stored)
	}
	if _, _, err := manager.Rotate(ctx, accessID, "emp-1", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected a used refresh token to be rejected, got %v", err)
	}
}

func TestManagerTreatsCorruptSessionAsMissing(t *testing.T) {
	manager, store := newTestManager(t)
	store.data[store.AccessSessionKey("legacy")] = "emp-1|plain-token"

	ok, err := manager.HasSession(context.Background(), "legacy")
	if err != nil || ok {
		t.Fatalf("expected unreadable session to count as missing, got %v %v", ok, err)
	}
	if _, _, err := manager.Rotate(context.Background(), "legacy", "emp-1", "plain-token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestManagerRotateUnknownSession(t *testing.T) {
	manager, _ := newTestManager(t)
	if _, _, err := manager.Rotate(context.Background(), "missing", "emp-1", "tok"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "access-1", "emp-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	ok, err := manager.HasSession(ctx, "access-1")
	if err != nil || !ok {
		t.Fatalf("expected active session, got %v %v", ok, err)
	}
	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, "access-1")
	if err != nil || ok {
		t.Fatalf("expected revoked session, got %v %v", ok, err)
	}
}

func TestNewAccessIDIsUnique(t *testing.T) {
	a, b := NewAccessID(), NewAccessID()
	if a == b || len(a) != 26 {
		t.Fatalf("expected distinct 26 character ids, got %q %q", a, b)
	}
}
