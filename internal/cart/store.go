package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	redisclient "github.com/litcafe/backoffice/pkg/redis"
)

// SessionStore persists the open ticket of each employee between requests.
type SessionStore interface {
	Load(ctx context.Context, employeeID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, employeeID uuid.UUID, c *Cart) error
	Delete(ctx context.Context, employeeID uuid.UUID) error
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(employeeID string) string
}

// RedisStore keeps each cart as a JSON document that expires after ttl of
// inactivity.
type RedisStore struct {
	kv  kvStore
	ttl time.Duration
}

var _ kvStore = (*redisclient.Client)(nil)

// NewRedisStore builds a RedisStore; ttl <= 0 keeps carts until cleared.
func NewRedisStore(kv kvStore, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, employeeID uuid.UUID) (*Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(employeeID.String()))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return New(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	c := New()
	if err := json.Unmarshal([]byte(raw), c); err != nil {
		// A corrupt document is treated as an empty ticket.
		return New(), nil
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, employeeID uuid.UUID, c *Cart) error {
	if c == nil || c.IsEmpty() {
		return s.Delete(ctx, employeeID)
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(employeeID.String()), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, employeeID uuid.UUID) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(employeeID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}

// MemoryStore keeps carts in process. Carts are stored encoded so callers
// never share a *Cart with the store.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[uuid.UUID][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, employeeID uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	raw, ok := s.carts[employeeID]
	s.mu.Unlock()
	c := New()
	if !ok {
		return c, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart")
	}
	return c, nil
}

func (s *MemoryStore) Save(ctx context.Context, employeeID uuid.UUID, c *Cart) error {
	if c == nil || c.IsEmpty() {
		return s.Delete(ctx, employeeID)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	s.mu.Lock()
	s.carts[employeeID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, employeeID uuid.UUID) error {
	s.mu.Lock()
	delete(s.carts, employeeID)
	s.mu.Unlock()
	return nil
}
