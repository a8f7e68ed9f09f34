package inventory

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
	"github.com/shopspring/decimal"
)

const DefaultUnit = "unidad"

// DefaultMinStock is the threshold applied when none is given.
var DefaultMinStock = decimal.NewFromInt(5)

// IngredientDTO is the stock payload returned to clients.
type IngredientDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Stock         decimal.Decimal `json:"stock"`
	MinStock      decimal.Decimal `json:"min_stock"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	SupplierName  *string         `json:"supplier_name,omitempty"`
	LowStock      bool            `json:"low_stock"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewIngredientDTO(item models.Ingredient) IngredientDTO {
	dto := IngredientDTO{
		ID:            item.ID,
		Name:          item.Name,
		Stock:         item.Stock,
		MinStock:      item.MinStock,
		UnitOfMeasure: item.UnitOfMeasure,
		SupplierID:    item.SupplierID,
		LowStock:      IsLowStock(item),
		CreatedAt:     item.CreatedAt,
	}
	if item.Supplier != nil {
		name := item.Supplier.CompanyName
		dto.SupplierName = &name
	}
	return dto
}

func newIngredientDTOs(items []models.Ingredient) []IngredientDTO {
	out := make([]IngredientDTO, 0, len(items))
	for _, item := range items {
		out = append(out, NewIngredientDTO(item))
	}
	return out
}

// IsLowStock reports whether stock has reached the minimum threshold.
func IsLowStock(item models.Ingredient) bool {
	return item.Stock.LessThanOrEqual(item.MinStock)
}

// IngredientInput is the editable shape of an ingredient. Nil thresholds and
// an empty unit fall back to the defaults.
type IngredientInput struct {
	Name          string           `json:"name" validate:"required,max=120"`
	Stock         decimal.Decimal  `json:"stock" validate:"gte=0"`
	MinStock      *decimal.Decimal `json:"min_stock" validate:"omitempty,gte=0"`
	UnitOfMeasure string           `json:"unit_of_measure" validate:"max=30"`
	SupplierID    *uuid.UUID       `json:"supplier_id"`
}

type supplierChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service tracks ingredient stock.
type Service interface {
	List(ctx context.Context) ([]IngredientDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*IngredientDTO, error)
	Create(ctx context.Context, input IngredientInput) (*IngredientDTO, error)
	Update(ctx context.Context, id uuid.UUID, input IngredientInput) (*IngredientDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*IngredientDTO, error)
	SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (*IngredientDTO, error)
	LowStock(ctx context.Context) ([]IngredientDTO, error)
	CountLowStock(ctx context.Context) (int64, error)
}

type service struct {
	repo      *Repository
	suppliers supplierChecker
}

func NewService(repo *Repository, suppliers supplierChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier checker required")
	}
	return &service{repo: repo, suppliers: suppliers}, nil
}

func (s *service) List(ctx context.Context) ([]IngredientDTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	return newIngredientDTOs(items), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*IngredientDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	dto := NewIngredientDTO(*item)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input IngredientInput) (*IngredientDTO, error) {
	item, err := s.buildIngredient(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.ClassifyDB(err, "create ingredient")
	}
	return s.Get(ctx, item.ID)
}

// Update overwrites the ingredient. A missing ingredient yields (nil, nil).
func (s *service) Update(ctx context.Context, id uuid.UUID, input IngredientInput) (*IngredientDTO, error) {
	item, err := s.buildIngredient(ctx, input)
	if err != nil {
		return nil, err
	}
	item.ID = id
	found, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.ClassifyDB(err, "update ingredient")
	}
	if !found {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.ClassifyDB(err, "delete ingredient")
	}
	return nil
}

// AdjustStock adds delta to the current stock, never going below zero.
// Unknown ingredients are ignored and yield (nil, nil).
func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*IngredientDTO, error) {
	found, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	if !found {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *service) SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (*IngredientDTO, error) {
	if stock.IsNegative() {
		return nil, pkgerrors.FieldErrors(map[string]string{"stock": "must be at least 0"})
	}
	found, err := s.repo.SetStock(ctx, id, stock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set stock")
	}
	if !found {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *service) LowStock(ctx context.Context) ([]IngredientDTO, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return newIngredientDTOs(items), nil
}

func (s *service) CountLowStock(ctx context.Context) (int64, error) {
	count, err := s.repo.CountLowStock(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count low stock")
	}
	return count, nil
}

func (s *service) buildIngredient(ctx context.Context, input IngredientInput) (*models.Ingredient, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.UnitOfMeasure = strings.TrimSpace(input.UnitOfMeasure)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	item := &models.Ingredient{
		Name:          input.Name,
		Stock:         input.Stock,
		MinStock:      DefaultMinStock,
		UnitOfMeasure: input.UnitOfMeasure,
		SupplierID:    input.SupplierID,
	}
	if input.MinStock != nil {
		item.MinStock = *input.MinStock
	}
	if item.UnitOfMeasure == "" {
		item.UnitOfMeasure = DefaultUnit
	}
	if input.SupplierID != nil {
		ok, err := s.suppliers.Exists(ctx, *input.SupplierID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check supplier")
		}
		if !ok {
			return nil, pkgerrors.FieldErrors(map[string]string{"supplier_id": "does not exist"})
		}
	}
	return item, nil
}
