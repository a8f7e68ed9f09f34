package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusOK, w.Code)
	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "world", body.Data.(map[string]any)["hello"])
	require.Nil(t, body.Meta)
}

func TestWriteSuccessMeta(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessMeta(w, []int{1, 2}, map[string]int{"count": 2})

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.EqualValues(t, 2, body.Meta.(map[string]any)["count"])
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"email": "must be a valid email"})
	WriteError(context.Background(), logg, w, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	require.Equal(t, "bad input", body.Error.Message)
	require.NotNil(t, body.Error.Details)
	require.Contains(t, buf.String(), "request.rejected")
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), logger.Nop(), w, errors.New("pq: relation does not exist"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "internal server error", body.Error.Message)
	require.Nil(t, body.Error.Details)
}

func TestWriteErrorDependencyUsesGenericMessage(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp: refused"), "insert sale")
	WriteError(context.Background(), nil, w, err)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "dependency unavailable", body.Error.Message)
}

func TestWriteErrorRepeatsRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("X-Request-Id", "caja-2-ticket-118")
	WriteError(context.Background(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found"))

	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "caja-2-ticket-118", body.Error.RequestID)
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Zero(t, w.Body.Len())
}
