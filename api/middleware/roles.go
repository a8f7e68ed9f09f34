package middleware

import (
	"net/http"

	"github.com/litcafe/backoffice/api/responses"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

// RequireManager gates back-office routes to the manager position. It must
// run after Auth; cashiers only reach the POS and auth routes.
func RequireManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := RoleFromContext(ctx)
			if role.IsManager() {
				next.ServeHTTP(w, r)
				return
			}
			if logg != nil {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"role": role.String(),
					"path": r.URL.Path,
				}), "auth.manager_required")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required"))
		})
	}
}
