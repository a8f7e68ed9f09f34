package middleware

import (
	"net/http"
	"strings"

	"github.com/litcafe/backoffice/api/responses"
	pkgAuth "github.com/litcafe/backoffice/pkg/auth"
	"github.com/litcafe/backoffice/pkg/auth/session"
	"github.com/litcafe/backoffice/pkg/config"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

// BearerToken extracts the token from the Authorization header, or from the
// access_token query parameter on websocket upgrades.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" && strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		// browsers cannot set headers on a websocket handshake
		raw = strings.TrimSpace(r.URL.Query().Get("access_token"))
	}
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// Auth validates a bearer token and seeds the request context with the claims.
// The token's jti must still have a live refresh session, so logout takes
// effect before the access token expires.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithEmployee(r.Context(), claims.EmployeeID, claims.Role)
			if logg != nil {
				ctx = logg.WithEmployee(ctx, claims.EmployeeID.String(), claims.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
