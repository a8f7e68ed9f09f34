package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists ingredient stock.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when the ingredient does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var item models.Ingredient
	if err := r.db.WithContext(ctx).Preload("Supplier").Where("id_ingrediente = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	if err := r.db.WithContext(ctx).Preload("Supplier").Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListLowStock returns ingredients at or below their minimum.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("stock <= stock_minimo").
		Order("nombre ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).Where("stock <= stock_minimo").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) Create(ctx context.Context, item *models.Ingredient) error {
	return r.db.WithContext(ctx).Omit("Supplier").Create(item).Error
}

// Update writes the editable columns and reports whether the row exists.
func (r *Repository) Update(ctx context.Context, item *models.Ingredient) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id_ingrediente = ?", item.ID).
		Updates(map[string]any{
			"nombre":        item.Name,
			"stock":         item.Stock,
			"stock_minimo":  item.MinStock,
			"unidad_medida": item.UnitOfMeasure,
			"id_proveedor":  item.SupplierID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdjustStock applies delta in one statement, clamping the result at zero so
// concurrent adjustments never lose an update.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id_ingrediente = ?", id).
		Update("stock", gorm.Expr("CASE WHEN stock + ? < 0 THEN 0 ELSE stock + ? END", delta, delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) SetStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id_ingrediente = ?", id).
		Update("stock", stock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id_ingrediente = ?", id).Delete(&models.Ingredient{}).Error
}
