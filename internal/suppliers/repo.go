package suppliers

import (
	"context"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists suppliers.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when the supplier does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).Where("id_proveedor = ?", id).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Exists reports whether a supplier with id is on file.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Supplier{}).Where("id_proveedor = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	if err := r.db.WithContext(ctx).Order("nombre_empresa ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// Update writes the editable columns and reports whether the row exists.
func (r *Repository) Update(ctx context.Context, supplier *models.Supplier) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id_proveedor = ?", supplier.ID).
		Updates(map[string]any{
			"nombre_empresa": supplier.CompanyName,
			"contacto":       supplier.Contact,
			"telefono":       supplier.Phone,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the supplier. Ingredients that referenced it keep existing
// with no supplier.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Ingredient{}).
			Where("id_proveedor = ?", id).
			Update("id_proveedor", nil).Error; err != nil {
			return err
		}
		return tx.Where("id_proveedor = ?", id).Delete(&models.Supplier{}).Error
	})
}
