package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists sale headers and lines.
type Repository struct {
	db *gorm.DB
}

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

// CreateSale inserts the header only; lines are written by CreateLines.
func (r *Repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
}

func (r *Repository) CreateLines(ctx context.Context, lines []models.SaleLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error
}

// FindByID loads a sale with its employee and lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.withDetails(ctx).
		Where("id_venta = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListBetween returns the sales in [from, to), newest first.
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	var out []models.Sale
	err := r.withDetails(ctx).
		Where("fecha_venta >= ? AND fecha_venta < ?", from.UTC(), to.UTC()).
		Order("fecha_venta DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TotalBetween sums total_venta for sales in [from, to).
func (r *Repository) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(SUM(total_venta), 0)").
		Where("fecha_venta >= ? AND fecha_venta < ?", from.UTC(), to.UTC()).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListOrphanHeaders returns sale headers that have no lines.
func (r *Repository) ListOrphanHeaders(ctx context.Context) ([]models.Sale, error) {
	var out []models.Sale
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM detalle_ventas d WHERE d.id_venta = ventas.id_venta)").
		Order("fecha_venta ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Employee").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Lines.Dish")
}
