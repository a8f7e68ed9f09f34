// Package session keeps the refresh sessions behind access tokens. A session
// is keyed by the access token's jti, so revoking it also invalidates the
// access token at the auth middleware.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/litcafe/backoffice/pkg/config"
	redisclient "github.com/litcafe/backoffice/pkg/redis"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Store is the redis surface the manager needs.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

var _ Store = (*redisclient.Client)(nil)

// AccessSessionChecker is the read-only surface used by the auth middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// record is what redis holds per session. Only a digest of the refresh
// token is stored.
type record struct {
	EmployeeID string    `json:"employee_id"`
	TokenHash  string    `json:"token_hash"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Manager issues, rotates and revokes refresh sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager requires the refresh TTL to outlive the access token TTL.
func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}, nil
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID, employeeID string) (string, error) {
	if strings.TrimSpace(accessID) == "" || strings.TrimSpace(employeeID) == "" {
		return "", errors.New("access id and employee id are required")
	}
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	payload, err := json.Marshal(record{EmployeeID: employeeID, TokenHash: digest(token), IssuedAt: m.now().UTC()})
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Rotate exchanges the refresh token of oldAccessID for a new session. The
// old session is closed before the new one opens, so a refresh token works
// exactly once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, employeeID, provided string) (newAccessID, newToken string, err error) {
	if strings.TrimSpace(oldAccessID) == "" || provided == "" {
		return "", "", ErrInvalidRefreshToken
	}
	key := m.store.AccessSessionKey(oldAccessID)
	rec, err := m.load(ctx, key)
	if err != nil {
		return "", "", err
	}
	if rec.EmployeeID != employeeID || subtle.ConstantTimeCompare([]byte(rec.TokenHash), []byte(digest(provided))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}
	if err := m.store.Del(ctx, key); err != nil {
		return "", "", fmt.Errorf("close session: %w", err)
	}

	newAccessID = NewAccessID()
	newToken, err = m.Generate(ctx, newAccessID, employeeID)
	if err != nil {
		return "", "", err
	}
	return newAccessID, newToken, nil
}

// Revoke closes the session of accessID.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errors.New("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errors.New("access id is required")
	}
	_, err := m.load(ctx, m.store.AccessSessionKey(accessID))
	switch {
	case errors.Is(err, ErrInvalidRefreshToken):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// load returns ErrInvalidRefreshToken for missing or unreadable sessions.
func (m *Manager) load(ctx context.Context, key string) (record, error) {
	stored, err := m.store.Get(ctx, key)
	if errors.Is(err, redisclient.ErrNil) {
		return record{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return record{}, err
	}
	var rec record
	if json.Unmarshal([]byte(stored), &rec) != nil || rec.EmployeeID == "" {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

// NewAccessID returns a random 26 character id used as the JWT jti and
// the session key.
func NewAccessID() string {
	return rand.Text()
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawStdEncoding.EncodeToString(sum[:])
}
