package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/api/middleware"
	"github.com/litcafe/backoffice/api/responses"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

func employeeIDFromContext(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.EmployeeIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee context missing")
	}
	return id, nil
}

// writeMutation renders a mutated resource, or 204 when the target did not
// exist and the mutation was a no-op.
func writeMutation[T any](w http.ResponseWriter, v *T) {
	if v == nil {
		responses.WriteNoContent(w)
		return
	}
	responses.WriteSuccess(w, v)
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
}
