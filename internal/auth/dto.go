package auth

import (
	"github.com/litcafe/backoffice/internal/employees"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token issued with the current access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse contains the tokens and the signed-in employee.
type LoginResponse struct {
	TokenPair
	Employee employees.EmployeeDTO `json:"employee"`
}
