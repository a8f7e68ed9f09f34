package employees

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists employees.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns gorm.ErrRecordNotFound when the employee does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("id_empleado = ?", id).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var employee models.Employee
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", normalized).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	if err := r.db.WithContext(ctx).Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Employee{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

// Update writes the profile columns and reports whether the row exists. The
// password hash is left untouched.
func (r *Repository) Update(ctx context.Context, employee *models.Employee) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id_empleado = ?", employee.ID).
		Updates(map[string]any{
			"nombre":             employee.Name,
			"puesto":             employee.Role,
			"telefono":           employee.Phone,
			"fecha_contratacion": employee.HiredOn,
			"email":              employee.Email,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id_empleado = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id_empleado = ?", id).Delete(&models.Employee{}).Error
}
