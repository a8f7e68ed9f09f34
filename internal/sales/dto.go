package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	"github.com/shopspring/decimal"
)

// SaleDTO is a sale with its lines as returned to clients.
type SaleDTO struct {
	ID            uuid.UUID           `json:"id"`
	SoldAt        time.Time           `json:"sold_at"`
	Total         decimal.Decimal     `json:"total"`
	EmployeeID    uuid.UUID           `json:"employee_id"`
	EmployeeName  string              `json:"employee_name,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Lines         []SaleLineDTO       `json:"lines"`
}

type SaleLineDTO struct {
	ID        uuid.UUID       `json:"id"`
	DishID    uuid.UUID       `json:"dish_id"`
	DishName  string          `json:"dish_name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// DayStats summarises a list of sales.
type DayStats struct {
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

func NewSaleDTO(sale models.Sale) SaleDTO {
	dto := SaleDTO{
		ID:            sale.ID,
		SoldAt:        sale.SoldAt,
		Total:         sale.Total,
		EmployeeID:    sale.EmployeeID,
		PaymentMethod: sale.PaymentMethod,
		Lines:         make([]SaleLineDTO, 0, len(sale.Lines)),
	}
	if sale.Employee != nil {
		dto.EmployeeName = sale.Employee.Name
	}
	for _, line := range sale.Lines {
		lineDTO := SaleLineDTO{
			ID:        line.ID,
			DishID:    line.DishID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		}
		if line.Dish != nil {
			lineDTO.DishName = line.Dish.Name
		}
		dto.Lines = append(dto.Lines, lineDTO)
	}
	return dto
}

// Stats counts the sales and derives the total and average ticket. The
// average of an empty list is zero.
func Stats(sales []SaleDTO) DayStats {
	stats := DayStats{Total: decimal.Zero, AverageTicket: decimal.Zero}
	for _, sale := range sales {
		stats.Count++
		stats.Total = stats.Total.Add(sale.Total)
	}
	if stats.Count > 0 {
		stats.AverageTicket = stats.Total.Div(decimal.NewFromInt(int64(stats.Count))).Round(2)
	}
	return stats
}
