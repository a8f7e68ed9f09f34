package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/stretchr/testify/require"
)

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":3}`))
	var body quantityRequest
	require.NoError(t, DecodeJSONBody(req, &body))
	require.Equal(t, 3, *body.Quantity)
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndRules(t *testing.T) {
	cases := []string{
		`{"quantity":1,"extra":true}`,
		`{"quantity":-1}`,
		`{}`,
		``,
		`not json`,
		`{"quantity":"three"}`,
		`{"quantity":1}{"quantity":2}`,
		`{"quantity":1,"note":"` + strings.Repeat("x", maxBodyBytes) + `"}`,
	}
	for _, raw := range cases {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(raw))
		var body quantityRequest
		err := DecodeJSONBody(req, &body)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "body %q: %v", raw, err)
	}
}

func TestParseQueryDate(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	req := httptest.NewRequest(http.MethodGet, "/?date=2026-03-14", nil)
	day, err := ParseQueryDate(req, "date", loc, time.Now())
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), day)

	fallback := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC) // 21:00 on the 14th in CST
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	day, err = ParseQueryDate(req, "date", loc, fallback)
	require.NoError(t, err)
	require.Equal(t, 14, day.Day())

	req = httptest.NewRequest(http.MethodGet, "/?date=14-03-2026", nil)
	_, err = ParseQueryDate(req, "date", loc, time.Now())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestURLParamUUID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	_, err := URLParamUUID(req, "id")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "pan", SanitizeString("  pan dulce ", 3))
	require.Equal(t, "café", SanitizeString(" café ", 0))
	require.Equal(t, "caf", SanitizeString("café", 3))
}
