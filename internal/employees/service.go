package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/security"
	"github.com/litcafe/backoffice/pkg/validation"
)

// EmployeeDTO is the staff payload returned to clients; it never carries the
// password hash.
type EmployeeDTO struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Role      enums.EmployeeRole `json:"role"`
	IsManager bool               `json:"is_manager"`
	Phone     *string            `json:"phone,omitempty"`
	HiredOn   string             `json:"hired_on"`
	Email     string             `json:"email"`
	CreatedAt time.Time          `json:"created_at"`
}

func NewEmployeeDTO(e models.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		Name:      e.Name,
		Role:      e.Role,
		IsManager: e.IsManager(),
		Phone:     e.Phone,
		HiredOn:   e.HiredOn.Format(validation.DateLayout),
		Email:     e.Email,
		CreatedAt: e.CreatedAt,
	}
}

// ProfileInput holds the editable employee fields.
type ProfileInput struct {
	Name    string             `json:"name" validate:"required,max=120"`
	Role    enums.EmployeeRole `json:"role" validate:"required"`
	Phone   *string            `json:"phone" validate:"omitempty,phone"`
	HiredOn string             `json:"hired_on" validate:"omitempty,isodate"`
	Email   string             `json:"email" validate:"required,email"`
}

// CreateInput adds the initial password to a profile.
type CreateInput struct {
	ProfileInput
	Password string `json:"password" validate:"required"`
}

// Service manages staff records.
type Service interface {
	List(ctx context.Context) ([]EmployeeDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error)
	Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error)
	Update(ctx context.Context, id uuid.UUID, input ProfileInput) (*EmployeeDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetPassword(ctx context.Context, id uuid.UUID, password string) error
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo     *Repository
	password config.PasswordConfig
	now      func() time.Time
}

func NewService(repo *Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	return &service{repo: repo, password: password, now: time.Now}, nil
}

// IsManager reports whether the employee may use manager-only screens.
func IsManager(e models.Employee) bool {
	return e.IsManager()
}

func (s *service) List(ctx context.Context) ([]EmployeeDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}
	out := make([]EmployeeDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewEmployeeDTO(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}
	dto := NewEmployeeDTO(*employee)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*EmployeeDTO, error) {
	profile, hiredOn, err := s.normalizeProfile(input.ProfileInput)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}
	employee := &models.Employee{
		Name:         profile.Name,
		Role:         profile.Role,
		Phone:        profile.Phone,
		HiredOn:      hiredOn,
		Email:        profile.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, emailConflict(pkgerrors.ClassifyDB(err, "create employee"))
	}
	dto := NewEmployeeDTO(*employee)
	return &dto, nil
}

// Update overwrites the profile. A missing employee yields (nil, nil).
func (s *service) Update(ctx context.Context, id uuid.UUID, input ProfileInput) (*EmployeeDTO, error) {
	profile, hiredOn, err := s.normalizeProfile(input)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.Update(ctx, &models.Employee{
		ID:      id,
		Name:    profile.Name,
		Role:    profile.Role,
		Phone:   profile.Phone,
		HiredOn: hiredOn,
		Email:   profile.Email,
	})
	if err != nil {
		return nil, emailConflict(pkgerrors.ClassifyDB(err, "update employee"))
	}
	if !found {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		classified := pkgerrors.ClassifyDB(err, "delete employee")
		if pkgerrors.IsCode(classified, pkgerrors.CodeValidation) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "employee has recorded sales")
		}
		return classified
	}
	return nil
}

// SetPassword replaces the stored hash; unknown ids are ignored.
func (s *service) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count employees")
	}
	return count, nil
}

func (s *service) hash(password string) (string, error) {
	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		if errors.Is(err, security.ErrWeakPassword) {
			return "", pkgerrors.FieldErrors(map[string]string{"password": fmt.Sprintf("must be at least %d characters", security.MinPasswordLength)})
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return hash, nil
}

func (s *service) normalizeProfile(input ProfileInput) (ProfileInput, time.Time, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.HiredOn = strings.TrimSpace(input.HiredOn)
	if input.Phone != nil {
		trimmed := strings.TrimSpace(*input.Phone)
		if trimmed == "" {
			input.Phone = nil
		} else {
			input.Phone = &trimmed
		}
	}
	if err := validation.Struct(input); err != nil {
		return input, time.Time{}, err
	}
	role, err := enums.ParseEmployeeRole(string(input.Role))
	if err != nil {
		return input, time.Time{}, pkgerrors.FieldErrors(map[string]string{"role": "is invalid"})
	}
	input.Role = role

	if input.HiredOn == "" {
		y, m, d := s.now().Date()
		return input, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	hiredOn, err := time.Parse(validation.DateLayout, input.HiredOn)
	if err != nil {
		return input, time.Time{}, pkgerrors.FieldErrors(map[string]string{"hired_on": "must be a date formatted YYYY-MM-DD"})
	}
	return input, hiredOn, nil
}

func emailConflict(err error) error {
	if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered").
			WithDetails(map[string]string{"email": "is already registered"})
	}
	return err
}
