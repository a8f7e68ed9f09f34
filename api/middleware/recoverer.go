package middleware

import (
	"fmt"
	"net/http"

	"github.com/litcafe/backoffice/api/responses"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. The employee is
// logged when Auth already ran, so a crashing POS terminal can be traced.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					fields := map[string]any{
						"panic":  fmt.Sprint(rec),
						"method": r.Method,
						"path":   r.URL.Path,
					}
					if employeeID, ok := EmployeeIDFromContext(ctx); ok {
						fields["employee_id"] = employeeID.String()
					}
					ctx = logg.WithFields(ctx, fields)
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
