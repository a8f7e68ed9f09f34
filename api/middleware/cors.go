package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Local dev servers for the back-office dashboard and the POS terminal.
var devOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// CORS applies the browser origin policy. With no configured origins, dev
// falls back to the local dev servers and every other environment refuses
// cross-origin calls outright.
func CORS(allowedOrigins []string, dev bool) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", requestIDHeader},
		// Content-Disposition carries the sales export filename.
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(allowedOrigins) == 0 {
		if dev {
			opts.AllowedOrigins = devOrigins
		} else {
			// go-chi/cors treats an empty list as "*"
			opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
		}
	}
	return cors.Handler(opts)
}
