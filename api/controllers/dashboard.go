package controllers

import (
	"net/http"
	"time"

	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/internal/dashboard"
	"github.com/litcafe/backoffice/pkg/logger"
)

func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "dashboard service")
			return
		}
		summary, err := svc.Summary(r.Context(), time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
