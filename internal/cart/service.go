package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/db/models"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
)

type dishLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error)
}

// Service manages the open POS ticket of each employee.
type Service interface {
	Get(ctx context.Context, employeeID uuid.UUID) (*Cart, error)
	Add(ctx context.Context, employeeID, dishID uuid.UUID) (*Cart, error)
	UpdateQuantity(ctx context.Context, employeeID, dishID uuid.UUID, quantity int) (*Cart, error)
	Remove(ctx context.Context, employeeID, dishID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, employeeID uuid.UUID) error
	Save(ctx context.Context, employeeID uuid.UUID, c *Cart) error
}

type service struct {
	store  SessionStore
	dishes dishLoader
}

// NewService builds a cart service backed by the provided session store.
func NewService(store SessionStore, dishes dishLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart session store required")
	}
	if dishes == nil {
		return nil, fmt.Errorf("dish loader required")
	}
	return &service{store: store, dishes: dishes}, nil
}

func (s *service) Get(ctx context.Context, employeeID uuid.UUID) (*Cart, error) {
	if employeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}
	return s.store.Load(ctx, employeeID)
}

// Add puts one unit of the dish on the ticket. The dish must exist and be
// available for sale.
func (s *service) Add(ctx context.Context, employeeID, dishID uuid.UUID) (*Cart, error) {
	c, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	dish, err := s.dishes.FindByID(ctx, dishID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dish not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dish")
	}
	if !dish.Available {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not available", dish.Name).
			WithDetails(map[string]string{"dish_id": "is not available"})
	}
	c.AddItem(ItemFromDish(*dish))
	if err := s.store.Save(ctx, employeeID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) UpdateQuantity(ctx context.Context, employeeID, dishID uuid.UUID, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.FieldErrors(map[string]string{"quantity": "must be at least 0"})
	}
	return s.mutate(ctx, employeeID, func(c *Cart) { c.UpdateQuantity(dishID, quantity) })
}

func (s *service) Remove(ctx context.Context, employeeID, dishID uuid.UUID) (*Cart, error) {
	return s.mutate(ctx, employeeID, func(c *Cart) { c.RemoveItem(dishID) })
}

func (s *service) Clear(ctx context.Context, employeeID uuid.UUID) error {
	if employeeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}
	return s.store.Delete(ctx, employeeID)
}

func (s *service) Save(ctx context.Context, employeeID uuid.UUID, c *Cart) error {
	if employeeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}
	return s.store.Save(ctx, employeeID, c)
}

func (s *service) mutate(ctx context.Context, employeeID uuid.UUID, fn func(*Cart)) (*Cart, error) {
	c, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.store.Save(ctx, employeeID, c); err != nil {
		return nil, err
	}
	return c, nil
}
