package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Supplier struct {
	ID          uuid.UUID `gorm:"column:id_proveedor;type:uuid;primaryKey"`
	CompanyName string    `gorm:"column:nombre_empresa;not null"`
	Contact     *string   `gorm:"column:contacto"`
	Phone       *string   `gorm:"column:telefono"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Supplier) TableName() string { return "proveedores" }

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
