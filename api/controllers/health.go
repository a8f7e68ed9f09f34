package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/pkg/config"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LitCafe-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency; any failure makes the instance
// unready.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LitCafe-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"dependency": name, "reason": err.Error()}), "health.dependency_down")
				}
			}
		}
		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
