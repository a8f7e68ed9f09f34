package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
	"gorm.io/gorm"
)

// Reservation is a table booking submitted from the public site. Date and
// Time keep the guest's local wall-clock values as entered.
type Reservation struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Name      string                  `gorm:"column:name;not null"`
	Email     string                  `gorm:"column:email;not null"`
	Phone     string                  `gorm:"column:phone;not null"`
	Date      string                  `gorm:"column:date;type:text;not null"`
	Time      string                  `gorm:"column:time;type:text;not null"`
	Guests    int                     `gorm:"column:guests;not null"`
	Status    enums.ReservationStatus `gorm:"column:status;type:text;not null;index"`
	CreatedAt time.Time               `gorm:"column:created_at;not null"`
}

func (Reservation) TableName() string { return "reservations" }

func (r *Reservation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
