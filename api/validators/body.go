package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/validation"
)

const maxBodyBytes = 1 << 20

// DecodeJSONBody reads exactly one JSON object into dest and runs its
// validate tags. Unknown fields, trailing data and bodies over 1 MiB are
// rejected as validation errors.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return bodyError(err)
	}
	if decoder.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must hold a single JSON object")
	}
	return validation.Struct(dest)
}

func bodyError(err error) error {
	var (
		tooLarge  *http.MaxBytesError
		syntax    *json.SyntaxError
		typeError *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	case errors.As(err, &tooLarge):
		return pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", tooLarge.Limit)
	case errors.As(err, &typeError) && typeError.Field != "":
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]string{typeError.Field: fmt.Sprintf("must be %s", typeError.Type)})
	case errors.As(err, &syntax):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed JSON").
			WithDetails(map[string]any{"offset": syntax.Offset})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
		WithDetails(map[string]string{"error": err.Error()})
}
