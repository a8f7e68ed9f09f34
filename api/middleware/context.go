package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
)

type contextKey string

const (
	ctxEmployeeID contextKey = "employee_id"
	ctxRole       contextKey = "actor_role"
)

// EmployeeIDFromContext returns the authenticated employee, if any.
func EmployeeIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(ctxEmployeeID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.EmployeeRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.EmployeeRole); ok {
		return v
	}
	return ""
}

// WithEmployee injects the authenticated employee into the context.
func WithEmployee(ctx context.Context, employeeID uuid.UUID, role enums.EmployeeRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxEmployeeID, employeeID)
	return context.WithValue(ctx, ctxRole, role)
}
