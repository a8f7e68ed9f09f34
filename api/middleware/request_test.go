package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/litcafe/backoffice/pkg/enums"
	"github.com/litcafe/backoffice/pkg/types"
)

func TestRequestIDEchoesOrMints(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := map[string]bool{
		"ticket-0042":                  true,
		"":                             false,
		strings.Repeat("x", 65):        false,
		"bad id with spaces":           false,
		"caja-1\n" + "X-Injected: yes": false,
	}
	for incoming, echoed := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header[requestIDHeader] = []string{incoming}
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		got := resp.Header().Get(requestIDHeader)
		if echoed {
			require.Equal(t, incoming, got)
			continue
		}
		_, err := uuid.Parse(got)
		require.NoError(t, err, "expected minted uuid for %q", incoming)
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("cash drawer offline")
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/sales", nil)
	req = req.WithContext(WithEmployee(req.Context(), uuid.New(), enums.EmployeeRoleCashier))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	require.NotContains(t, body.Error.Message, "cash drawer")
}

func TestRecovererRepanicsOnAbort(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
