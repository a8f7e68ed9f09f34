package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
	redisclient "github.com/litcafe/backoffice/pkg/redis"
)

type documentStore interface {
	Get(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key string, fn func(current string) (string, error)) error
}

var _ documentStore = (*redisclient.Client)(nil)

// RedisRepository keeps every reservation in one JSON array stored under a
// single key. Writes use optimistic transactions so concurrent submissions
// are not lost.
type RedisRepository struct {
	store documentStore
	key   string
}

func NewRedisRepository(store documentStore, key string) (*RedisRepository, error) {
	if store == nil {
		return nil, errors.New("redis client required")
	}
	if key == "" {
		return nil, errors.New("reservations key required")
	}
	return &RedisRepository{store: store, key: key}, nil
}

func (r *RedisRepository) List(ctx context.Context) ([]Reservation, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return []Reservation{}, nil
		}
		return nil, err
	}
	return decodeDocument(raw)
}

func (r *RedisRepository) Create(ctx context.Context, res Reservation) error {
	return r.store.Update(ctx, r.key, func(current string) (string, error) {
		all, err := decodeDocument(current)
		if err != nil {
			return "", err
		}
		return encodeDocument(append(all, res))
	})
}

func (r *RedisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	return r.store.Update(ctx, r.key, func(current string) (string, error) {
		all, err := decodeDocument(current)
		if err != nil {
			return "", err
		}
		for i := range all {
			if all[i].ID != id {
				continue
			}
			if all[i].Status != enums.ReservationStatusPending {
				return "", ErrNotPending
			}
			all[i].Status = status
			return encodeDocument(all)
		}
		return "", ErrNotFound
	})
}

func decodeDocument(raw string) ([]Reservation, error) {
	if raw == "" {
		return []Reservation{}, nil
	}
	var out []Reservation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode reservations document: %w", err)
	}
	return out, nil
}

func encodeDocument(all []Reservation) (string, error) {
	raw, err := json.Marshal(all)
	if err != nil {
		return "", fmt.Errorf("encode reservations document: %w", err)
	}
	return string(raw), nil
}
