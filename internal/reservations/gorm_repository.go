package reservations

import (
	"context"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	"gorm.io/gorm"
)

// GormRepository stores reservations in the reservations table.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context) ([]Reservation, error) {
	var rows []models.Reservation
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (r *GormRepository) Create(ctx context.Context, res Reservation) error {
	row := res.toModel()
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, enums.ReservationStatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrNotPending
}
