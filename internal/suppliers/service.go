package suppliers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/db/models"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/validation"
)

// SupplierDTO is the supplier payload returned to clients.
type SupplierDTO struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	Contact     *string   `json:"contact,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewSupplierDTO(s models.Supplier) SupplierDTO {
	return SupplierDTO{
		ID:          s.ID,
		CompanyName: s.CompanyName,
		Contact:     s.Contact,
		Phone:       s.Phone,
		CreatedAt:   s.CreatedAt,
	}
}

// SupplierInput is the editable shape of a supplier.
type SupplierInput struct {
	CompanyName string  `json:"company_name" validate:"required,max=160"`
	Contact     *string `json:"contact" validate:"omitempty,max=160"`
	Phone       *string `json:"phone" validate:"omitempty,phone"`
}

// Service manages the supplier directory.
type Service interface {
	List(ctx context.Context) ([]SupplierDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
	Create(ctx context.Context, input SupplierInput) (*SupplierDTO, error)
	Update(ctx context.Context, id uuid.UUID, input SupplierInput) (*SupplierDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]SupplierDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	out := make([]SupplierDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewSupplierDTO(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	dto := NewSupplierDTO(*supplier)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input SupplierInput) (*SupplierDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	supplier := &models.Supplier{
		CompanyName: input.CompanyName,
		Contact:     input.Contact,
		Phone:       input.Phone,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, pkgerrors.ClassifyDB(err, "create supplier")
	}
	dto := NewSupplierDTO(*supplier)
	return &dto, nil
}

// Update overwrites the supplier. A missing supplier yields (nil, nil).
func (s *service) Update(ctx context.Context, id uuid.UUID, input SupplierInput) (*SupplierDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	found, err := s.repo.Update(ctx, &models.Supplier{
		ID:          id,
		CompanyName: input.CompanyName,
		Contact:     input.Contact,
		Phone:       input.Phone,
	})
	if err != nil {
		return nil, pkgerrors.ClassifyDB(err, "update supplier")
	}
	if !found {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.ClassifyDB(err, "delete supplier")
	}
	return nil
}

func normalizeInput(input SupplierInput) (SupplierInput, error) {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	input.Contact = trimOptional(input.Contact)
	input.Phone = trimOptional(input.Phone)
	return input, validation.Struct(input)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
