package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists menu dishes.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dish repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID returns gorm.ErrRecordNotFound when the dish does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error) {
	var dish models.Dish
	if err := r.db.WithContext(ctx).Where("id_platillo = ?", id).First(&dish).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

// ListAvailable returns dishes on sale, optionally restricted to one category.
func (r *Repository) ListAvailable(ctx context.Context, category *enums.DishCategory) ([]models.Dish, error) {
	q := r.db.WithContext(ctx).Where("disponible = ?", true)
	if category != nil {
		q = q.Where("categoria = ?", *category)
	}
	var dishes []models.Dish
	if err := q.Order("categoria ASC").Order("nombre ASC").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := r.db.WithContext(ctx).Order("categoria ASC").Order("nombre ASC").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *Repository) Create(ctx context.Context, dish *models.Dish) error {
	return r.db.WithContext(ctx).Create(dish).Error
}

// Update writes every editable column of dish.
func (r *Repository) Update(ctx context.Context, dish *models.Dish) error {
	return r.db.WithContext(ctx).
		Model(&models.Dish{}).
		Where("id_platillo = ?", dish.ID).
		Updates(map[string]any{
			"nombre":      dish.Name,
			"descripcion": dish.Description,
			"precio":      dish.Price,
			"categoria":   dish.Category,
			"disponible":  dish.Available,
			"imagen_url":  dish.ImageURL,
		}).Error
}

// Delete removes the dish and reports whether a row was affected.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id_platillo = ?", id).Delete(&models.Dish{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ToggleAvailability flips disponible in place and reports whether the dish
// exists.
func (r *Repository) ToggleAvailability(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Dish{}).
		Where("id_platillo = ?", id).
		Update("disponible", gorm.Expr("NOT disponible"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
