// Package auth mints and verifies the HS256 access tokens carried by POS
// terminals and the back-office dashboard.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/config"
)

var signingMethod = jwt.SigningMethodHS256

// ErrUnknownKey is returned for tokens signed with a key id that is neither
// the current nor the previous secret.
var ErrUnknownKey = errors.New("token signed with unknown key")

// keyID names a secret without revealing it, so a verifier can tell which
// side of a rotation a token was signed on.
func keyID(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:4])
}

// MintAccessToken signs a token for payload that expires
// cfg.ExpirationMinutes after now. The header's kid names the signing secret.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", errors.New("jwt secret is required")
	case cfg.Issuer == "":
		return "", errors.New("jwt issuer is required")
	case cfg.ExpirationMinutes <= 0:
		return "", errors.New("jwt expiration minutes must be positive")
	case payload.EmployeeID == uuid.Nil:
		return "", errors.New("employee id is required")
	case !payload.Role.IsValid():
		return "", fmt.Errorf("invalid employee role %q", payload.Role)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	token := jwt.NewWithClaims(signingMethod, AccessTokenClaims{
		EmployeeID: payload.EmployeeID,
		Role:       payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.EmployeeID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)),
			ID:        jti,
		},
	})
	token.Header["kid"] = keyID(cfg.Secret)

	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken fully validates tokenString: signature, issuer and
// expiry.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parse(cfg, tokenString,
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
}

// ParseAccessTokenAllowExpired checks the signature and issuer but not the
// time claims, so refresh and logout can read the jti of an expired token.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	claims, err := parse(cfg, tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return claims, nil
}

func parse(cfg config.JWTConfig, tokenString string, opts ...jwt.ParserOption) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	opts = append(opts, jwt.WithValidMethods([]string{signingMethod.Alg()}))

	claims := &AccessTokenClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, verificationKey(cfg), opts...); err != nil {
		return nil, err
	}
	if claims.EmployeeID == uuid.Nil {
		return nil, errors.New("token missing employee id")
	}
	return claims, nil
}

// verificationKey picks the secret named by the token's kid. Tokens without
// a kid predate rotation support and are checked against the current secret.
func verificationKey(cfg config.JWTConfig) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		switch {
		case kid == "", kid == keyID(cfg.Secret):
			return []byte(cfg.Secret), nil
		case cfg.PreviousSecret != "" && kid == keyID(cfg.PreviousSecret):
			return []byte(cfg.PreviousSecret), nil
		}
		return nil, ErrUnknownKey
	}
}
