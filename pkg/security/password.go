// Package security hashes employee passwords with Argon2id and mints
// temporary passwords for new staff.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/litcafe/backoffice/pkg/config"
	"golang.org/x/crypto/argon2"
)

// MinPasswordLength is the shortest password accepted for employees.
const MinPasswordLength = 8

// tempAlphabet leaves out characters that are easy to misread when a
// manager dictates a password across the counter.
const tempAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

var (
	// ErrInvalidHash signals a stored hash that is not Argon2id PHC text.
	ErrInvalidHash = errors.New("invalid argon2id hash")
	// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// ArgonParams are the cost parameters encoded into every hash.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

func (p ArgonParams) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
}

// HashPassword returns password as $argon2id$v=19$m=..,t=..,p=..$salt$key.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if len([]rune(password)) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	params := paramsFromConfig(cfg)
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return encodeHash(params, salt, params.key(password, salt)), nil
}

// VerifyPassword reports whether password matches encoded. Only a malformed
// hash is an error.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(want, params.key(password, salt)) == 1, nil
}

// NeedsRehash reports whether encoded was produced with cost parameters
// other than the configured ones, so a successful login can upgrade it.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	params, _, _, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	want := paramsFromConfig(cfg)
	want.SaltLen = params.SaltLen
	return params != want
}

// GenerateTempPassword returns length characters drawn uniformly from an
// alphabet without look-alike characters.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("temporary password length must be positive")
	}
	limit := big.NewInt(int64(len(tempAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for range length {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		b.WriteByte(tempAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func paramsFromConfig(cfg config.PasswordConfig) ArgonParams {
	return ArgonParams{
		Memory:      uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		Time:        uint32(clamp(cfg.ArgonTime, 1, 10)),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     uint32(clamp(cfg.ArgonSaltLen, 8, 64)),
		KeyLen:      uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func encodeHash(p ArgonParams, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var p ArgonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
