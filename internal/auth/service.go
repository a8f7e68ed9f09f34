package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/internal/employees"
	pkgAuth "github.com/litcafe/backoffice/pkg/auth"
	"github.com/litcafe/backoffice/pkg/auth/session"
	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	Me(ctx context.Context, employeeID uuid.UUID) (*employees.EmployeeDTO, error)
}

type employeeRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) (bool, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID, employeeID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, employeeID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Employees      employeeRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	employees employeeRepository
	session   sessionManager
	jwtCfg    config.JWTConfig
	pwCfg     config.PasswordConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Employees == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		employees: params.Employees,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
		pwCfg:     params.PasswordConfig,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	employee, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	s.upgradeHash(ctx, employee, req.Password)

	pair, err := s.issue(ctx, employee.ID, employee.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		TokenPair: *pair,
		Employee:  employees.NewEmployeeDTO(*employee),
	}, nil
}

// Refresh rotates the session bound to the (possibly expired) access token.
// The role is re-read so a demotion takes effect on the next refresh.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	employee, err := s.employees.FindByID(ctx, claims.EmployeeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, employee.ID.String(), refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	access, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		EmployeeID: employee.ID,
		Role:       employee.Role,
		JTI:        newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, employeeID uuid.UUID) (*employees.EmployeeDTO, error) {
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "employee no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	dto := employees.NewEmployeeDTO(*employee)
	return &dto, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Employee, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	employee, err := s.employees.FindByEmail(ctx, input)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}

	valid, err := security.VerifyPassword(password, employee.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !employee.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return employee, nil
}

// upgradeHash re-hashes the password when the argon2 parameters changed.
// Failures only cost the upgrade, never the login.
func (s *service) upgradeHash(ctx context.Context, employee *models.Employee, password string) {
	if !security.NeedsRehash(employee.PasswordHash, s.pwCfg) {
		return
	}
	hash, err := security.HashPassword(password, s.pwCfg)
	if err == nil {
		_, err = s.employees.UpdatePasswordHash(ctx, employee.ID, hash)
	}
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "employee_id", employee.ID.String()), "auth.rehash_failed")
	}
}

func (s *service) issue(ctx context.Context, employeeID uuid.UUID, role enums.EmployeeRole) (*TokenPair, error) {
	accessID := session.NewAccessID()
	access, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		EmployeeID: employeeID,
		Role:       role,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refresh, err := s.session.Generate(ctx, accessID, employeeID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
