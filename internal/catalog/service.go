package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/validation"
	"github.com/shopspring/decimal"
)

// Service exposes menu management and the POS menu listing.
type Service interface {
	ListAvailable(ctx context.Context, category *enums.DishCategory) ([]DishDTO, error)
	List(ctx context.Context) ([]DishDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DishDTO, error)
	Create(ctx context.Context, input DishInput) (*DishDTO, error)
	Update(ctx context.Context, id uuid.UUID, input DishInput) (*DishDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleAvailability(ctx context.Context, id uuid.UUID) (*DishDTO, error)
}

// DishInput is the editable shape of a dish. Update replaces every field
// except Available, which is kept when nil. New dishes default to available.
type DishInput struct {
	Name        string             `json:"name" validate:"required,max=120"`
	Description *string            `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal    `json:"price" validate:"gt=0"`
	Category    enums.DishCategory `json:"category"`
	Available   *bool              `json:"available"`
	ImageURL    *string            `json:"image_url" validate:"omitempty,url"`
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListAvailable(ctx context.Context, category *enums.DishCategory) ([]DishDTO, error) {
	dishes, err := s.repo.ListAvailable(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available dishes")
	}
	return NewDishDTOs(dishes), nil
}

func (s *service) List(ctx context.Context) ([]DishDTO, error) {
	dishes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dishes")
	}
	return NewDishDTOs(dishes), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DishDTO, error) {
	dish, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dish not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dish")
	}
	dto := NewDishDTO(*dish)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input DishInput) (*DishDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	dish := &models.Dish{Available: true}
	applyInput(dish, input)
	if err := s.repo.Create(ctx, dish); err != nil {
		return nil, pkgerrors.ClassifyDB(err, "create dish")
	}
	dto := NewDishDTO(*dish)
	return &dto, nil
}

// Update overwrites the dish. A missing dish yields (nil, nil).
func (s *service) Update(ctx context.Context, id uuid.UUID, input DishInput) (*DishDTO, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	dish, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dish")
	}
	applyInput(dish, input)
	if err := s.repo.Update(ctx, dish); err != nil {
		return nil, pkgerrors.ClassifyDB(err, "update dish")
	}
	dto := NewDishDTO(*dish)
	return &dto, nil
}

// Delete removes the dish; deleting an unknown dish is a no-op. Dishes that
// already appear on a sale cannot be deleted and should be marked
// unavailable instead.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.Delete(ctx, id)
	if err == nil {
		return nil
	}
	classified := pkgerrors.ClassifyDB(err, "delete dish")
	if pkgerrors.IsCode(classified, pkgerrors.CodeValidation) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "dish has recorded sales; mark it unavailable instead")
	}
	return classified
}

func (s *service) ToggleAvailability(ctx context.Context, id uuid.UUID) (*DishDTO, error) {
	found, err := s.repo.ToggleAvailability(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle dish availability")
	}
	if !found {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func normalizeInput(input DishInput) (DishInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = trimOptional(input.Description)
	input.ImageURL = trimOptional(input.ImageURL)
	if input.Category == "" {
		input.Category = enums.DishCategoryGeneral
	}
	category, err := enums.ParseDishCategory(string(input.Category))
	if err != nil {
		return input, pkgerrors.FieldErrors(map[string]string{"category": "is invalid"})
	}
	input.Category = category
	if err := validation.Struct(input); err != nil {
		return input, err
	}
	return input, nil
}

func applyInput(dish *models.Dish, input DishInput) {
	dish.Name = input.Name
	dish.Description = input.Description
	dish.Price = input.Price.Round(2)
	dish.Category = input.Category
	if input.Available != nil {
		dish.Available = *input.Available
	}
	dish.ImageURL = input.ImageURL
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
