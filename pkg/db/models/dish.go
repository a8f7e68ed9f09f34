package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dish is a sellable menu entry (platillo).
type Dish struct {
	ID          uuid.UUID          `gorm:"column:id_platillo;type:uuid;primaryKey"`
	Name        string             `gorm:"column:nombre;not null"`
	Description *string            `gorm:"column:descripcion"`
	Price       decimal.Decimal    `gorm:"column:precio;type:numeric(12,2);not null"`
	Category    enums.DishCategory `gorm:"column:categoria;type:text;not null"`
	Available   bool               `gorm:"column:disponible;not null"`
	ImageURL    *string            `gorm:"column:imagen_url"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (Dish) TableName() string { return "platillos" }

func (d *Dish) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
