package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/litcafe/backoffice/api/responses"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

type windowCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// limitDimension counts requests per identity, e.g. per client IP. An empty
// identity is not counted.
type limitDimension struct {
	name      string
	limit     int64
	needsBody bool
	identity  func(r *http.Request, body []byte) string
}

// RateLimitPolicy is a named set of fixed-window limits sharing one window.
// Login and the public reservation form each get their own policy so their
// counters never mix.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	dims   []limitDimension
}

// NewRateLimitPolicy limits by client IP and by the "email" field of the
// JSON body. A zero limit disables that dimension; a zero window disables
// the policy.
func NewRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) RateLimitPolicy {
	p := RateLimitPolicy{name: strings.ToLower(strings.TrimSpace(name)), window: window}
	if p.name == "" {
		p.name = "default"
	}
	if ipLimit > 0 {
		p.dims = append(p.dims, limitDimension{name: "ip", limit: int64(ipLimit), identity: func(r *http.Request, _ []byte) string {
			return clientIP(r)
		}})
	}
	if emailLimit > 0 {
		// only the hash of the address reaches redis or the logs
		p.dims = append(p.dims, limitDimension{name: "email", limit: int64(emailLimit), needsBody: true, identity: func(_ *http.Request, body []byte) string {
			if email := emailFromBody(body); email != "" {
				sum := sha256.Sum256([]byte(email))
				return hex.EncodeToString(sum[:])
			}
			return ""
		}})
	}
	return p
}

func (p RateLimitPolicy) needsBody() bool {
	for _, d := range p.dims {
		if d.needsBody {
			return true
		}
	}
	return false
}

// RateLimit rejects requests over any of the policy's limits with 429 and a
// Retry-After of one window.
func RateLimit(policy RateLimitPolicy, counter windowCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.window <= 0 || len(policy.dims) == 0 || counter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var body []byte
			if policy.needsBody() && r.Body != nil {
				var err error
				if body, err = io.ReadAll(r.Body); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			for _, dim := range policy.dims {
				identity := dim.identity(r, body)
				if identity == "" {
					continue
				}
				scope := dim.name + ":" + policy.name + ":" + identity
				allowed, count, err := counter.FixedWindowAllow(ctx, scope, dim.limit, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":    policy.name,
							"dimension": dim.name,
							"identity":  identity,
							"attempts":  count,
							"limit":     dim.limit,
						}), "rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int((policy.window+time.Second-1)/time.Second)))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts; try again later"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket peer.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}
