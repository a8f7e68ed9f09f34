package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/litcafe/backoffice/pkg/logger"
)

// Logging writes one access line per request once it completes. Server
// errors log at warn so they stand out from the POS polling traffic, and
// health probes only log at debug.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			rec := &statusRecorder{ResponseWriter: w}
			r = r.WithContext(ctx)

			next.ServeHTTP(rec, r)

			ctx = logg.WithFields(ctx, map[string]any{
				"route":       routePattern(r),
				"status":      rec.Status(),
				"bytes":       rec.bytes,
				"client_ip":   clientIP(r),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			switch {
			case rec.Status() >= http.StatusInternalServerError:
				logg.Warn(ctx, "request.failed")
			case strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics":
				logg.Debug(ctx, "request.probe")
			default:
				logg.Info(ctx, "request.complete")
			}
		})
	}
}

// statusRecorder remembers the status and body size written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets the reservation websocket upgrade through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("%T does not support hijacking", r.ResponseWriter)
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}
