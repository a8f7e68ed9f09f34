package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/litcafe/backoffice/api/responses"
	"github.com/litcafe/backoffice/api/validators"
	"github.com/litcafe/backoffice/internal/sales"
	"github.com/litcafe/backoffice/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SaleList returns the sales of ?date= (today when absent) with the day's
// stats in meta.
func SaleList(svc sales.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "sales service")
			return
		}
		day, err := validators.ParseQueryDate(r, "date", loc, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByDay(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMeta(w, list, sales.Stats(list))
	}
}

func SaleGet(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "sales service")
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// SaleExport streams the day's sales as an xlsx workbook. The workbook is
// built in memory first so a failure still produces a JSON error.
func SaleExport(svc sales.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "sales service")
			return
		}
		day, err := validators.ParseQueryDate(r, "date", loc, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := svc.ExportDay(r.Context(), day, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ventas-%s.xlsx"`, day.Format("2006-01-02")))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "sales.export_write_failed")
		}
	}
}
