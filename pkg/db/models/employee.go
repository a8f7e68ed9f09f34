package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/enums"
	"gorm.io/gorm"
)

// Employee is a member of staff; the email doubles as the login identity.
type Employee struct {
	ID           uuid.UUID          `gorm:"column:id_empleado;type:uuid;primaryKey"`
	Name         string             `gorm:"column:nombre;not null"`
	Role         enums.EmployeeRole `gorm:"column:puesto;type:text;not null"`
	Phone        *string            `gorm:"column:telefono"`
	HiredOn      time.Time          `gorm:"column:fecha_contratacion;type:date;not null"`
	Email        string             `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (Employee) TableName() string { return "empleados" }

func (e *Employee) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsManager reports whether the employee may use manager-only screens.
func (e Employee) IsManager() bool {
	return e.Role.IsManager()
}
