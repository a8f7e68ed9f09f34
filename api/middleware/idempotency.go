package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/litcafe/backoffice/api/responses"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
	pkgredis "github.com/litcafe/backoffice/pkg/redis"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// claimTTL bounds how long a crashed request can hold its key.
	claimTTL = 2 * time.Minute
)

// idempotentRoutes lists the non-repeatable writes by method and chi
// pattern; retries from a POS terminal must not record a sale or a stock
// movement twice.
var idempotentRoutes = map[string]bool{
	http.MethodPost + " /api/v1/pos/sales":             true,
	http.MethodPost + " /api/v1/inventory/{id}/adjust": true,
}

const (
	recordPending = "pending"
	recordDone    = "done"
)

type idempotencyRecord struct {
	State       string            `json:"state"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency guards covered routes with the Idempotency-Key header. The
// key is claimed before the handler runs, so a double-tapped checkout
// button records one sale: the second request gets 409 while the first is
// in flight and the stored response afterwards. Server failures release
// the key. Completed records live for ttl.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !covered(r.Method, routePattern(r)) || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			claim, _ := json.Marshal(idempotencyRecord{State: recordPending, RequestHash: requestHash})
			claimed, err := store.SetNX(ctx, key, string(claim), min(claimTTL, ttl))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayExisting(w, r, store, key, requestHash, logg)
				return
			}

			rec := &responseCapture{statusRecorder: statusRecorder{ResponseWriter: w}}
			next.ServeHTTP(rec, r)
			status := rec.Status()

			// server failures stay retryable
			if status >= http.StatusInternalServerError {
				if delErr := store.Del(context.WithoutCancel(ctx), key); delErr != nil {
					logError(ctx, logg, "release idempotency key", delErr)
				}
				return
			}

			record := idempotencyRecord{
				State:       recordDone,
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(ctx, logg, "marshal idempotency record", marshalErr)
				return
			}
			if setErr := store.Set(context.WithoutCancel(ctx), key, string(payload), ttl); setErr != nil {
				logError(ctx, logg, "persist idempotency record", setErr)
			}
		})
	}
}

func replayExisting(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	ctx := r.Context()
	stored, err := store.Get(ctx, key)
	if errors.Is(err, pkgredis.ErrNil) {
		// the claim expired between SetNX and Get
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key released; retry the request"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	record, err := decodeRecord(stored)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.State == recordPending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
	default:
		writeStoredResponse(w, record)
	}
}

// buildScope keys a record to the employee and the concrete path, so two
// cashiers may reuse a key and an adjust key is bound to one ingredient.
func buildScope(r *http.Request) string {
	employee := "anonymous"
	if id, ok := EmployeeIDFromContext(r.Context()); ok {
		employee = id.String()
	}
	return employee + "|" + r.Method + "|" + r.URL.Path
}

func decodeRecord(payload string) (idempotencyRecord, error) {
	var record idempotencyRecord
	err := json.Unmarshal([]byte(payload), &record)
	return record, err
}

// writeStoredResponse replays a completed record and marks it as a replay.
func writeStoredResponse(w http.ResponseWriter, record idempotencyRecord) {
	for name, value := range record.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func covered(method, pattern string) bool {
	return idempotentRoutes[method+" "+pattern]
}

// responseCapture tees the body so it can be stored for replay.
type responseCapture struct {
	statusRecorder
	body bytes.Buffer
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.statusRecorder.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
