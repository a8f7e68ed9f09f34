package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a stocked inventory item measured in UnitOfMeasure.
type Ingredient struct {
	ID            uuid.UUID       `gorm:"column:id_ingrediente;type:uuid;primaryKey"`
	Name          string          `gorm:"column:nombre;not null"`
	Stock         decimal.Decimal `gorm:"column:stock;type:numeric(12,3);not null"`
	MinStock      decimal.Decimal `gorm:"column:stock_minimo;type:numeric(12,3);not null"`
	UnitOfMeasure string          `gorm:"column:unidad_medida;not null"`
	SupplierID    *uuid.UUID      `gorm:"column:id_proveedor;type:uuid"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Ingredient) TableName() string { return "ingredientes" }

func (i *Ingredient) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
