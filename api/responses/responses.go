package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteSuccessMeta writes data along with an aggregate block.
func WriteSuccessMeta(w http.ResponseWriter, data, meta any) {
	writeJSON(w, http.StatusOK, types.SuccessEnvelope{Data: data, Meta: meta})
}

// WriteNoContent answers mutations that had nothing to act on.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError renders err as an error envelope. Client errors are logged at
// warn level, server and dependency failures at error level with the
// postgres detail attached.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.HTTPStatus < http.StatusInternalServerError {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:      string(typed.Code()),
			Message:   msg,
			RequestID: w.Header().Get("X-Request-Id"),
		},
	}
	if meta.DetailsAllowed && meta.HTTPStatus < http.StatusInternalServerError {
		payload.Error.Details = typed.Details()
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code":  dump.Code,
			"error_chain": dump.Chain,
			"status":      meta.HTTPStatus,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			if fields := dump.DB.LogFields(); fields != nil {
				ctx = logg.WithFields(ctx, fields)
			}
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(logg.WithField(ctx, "error", dump.TopMessage), "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
