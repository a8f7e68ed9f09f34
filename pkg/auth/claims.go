package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	EmployeeID uuid.UUID
	Role       enums.EmployeeRole
	// JTI ties the token to its refresh session; generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to terminals.
type AccessTokenClaims struct {
	EmployeeID uuid.UUID          `json:"employee_id"`
	Role       enums.EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}

// IsManager reports whether the bearer holds the manager position.
func (c *AccessTokenClaims) IsManager() bool {
	return c != nil && c.Role.IsManager()
}
