package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is the immutable header of a completed POS transaction (venta).
type Sale struct {
	ID            uuid.UUID           `gorm:"column:id_venta;type:uuid;primaryKey"`
	SoldAt        time.Time           `gorm:"column:fecha_venta;not null"`
	Total         decimal.Decimal     `gorm:"column:total_venta;type:numeric(12,2);not null"`
	EmployeeID    uuid.UUID           `gorm:"column:id_empleado;type:uuid;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:metodo_pago;type:text;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`

	Employee *Employee  `gorm:"foreignKey:EmployeeID;references:ID"`
	Lines    []SaleLine `gorm:"foreignKey:SaleID;references:ID"`
}

func (Sale) TableName() string { return "ventas" }

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleLine captures one dish of a sale at the price charged (detalle_venta).
type SaleLine struct {
	ID        uuid.UUID       `gorm:"column:id_detalle;type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:id_venta;type:uuid;not null;index"`
	DishID    uuid.UUID       `gorm:"column:id_platillo;type:uuid;not null"`
	Quantity  int             `gorm:"column:cantidad;not null"`
	UnitPrice decimal.Decimal `gorm:"column:precio_unitario;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`

	Dish *Dish `gorm:"foreignKey:DishID;references:ID"`
}

func (SaleLine) TableName() string { return "detalle_ventas" }

func (l *SaleLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Subtotal is the line amount at the captured unit price.
func (l SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
