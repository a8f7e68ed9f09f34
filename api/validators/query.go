package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/validation"
)

// ParseQueryDate reads a YYYY-MM-DD query parameter as midnight in loc,
// defaulting to fallback's calendar day when the parameter is absent.
func ParseQueryDate(r *http.Request, key string, loc *time.Location, fallback time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		y, m, d := fallback.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(validation.DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid date").WithDetails(map[string]string{key: "must be a date formatted YYYY-MM-DD"})
	}
	return day, nil
}

// URLParamUUID parses a chi route parameter as a UUID.
func URLParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]string{key: "must be a valid id"})
	}
	return id, nil
}
