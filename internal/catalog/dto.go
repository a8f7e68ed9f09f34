package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	"github.com/shopspring/decimal"
)

// DishDTO is the menu entry payload returned to clients.
type DishDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Price       decimal.Decimal    `json:"price"`
	Category    enums.DishCategory `json:"category"`
	Available   bool               `json:"available"`
	ImageURL    *string            `json:"image_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func NewDishDTO(d models.Dish) DishDTO {
	return DishDTO{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Available:   d.Available,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
	}
}

func NewDishDTOs(dishes []models.Dish) []DishDTO {
	out := make([]DishDTO, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, NewDishDTO(d))
	}
	return out
}
