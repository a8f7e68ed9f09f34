package middleware

import (
	"net/http"
	"time"

	"github.com/litcafe/backoffice/pkg/metrics"
)

// Metrics records request latency labelled by the chi route pattern so ids
// in the path do not explode the label set.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			m.Observe(r.Method, routePattern(r), rec.Status(), time.Since(start))
		})
	}
}
