package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/internal/cart"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Submitter turns a cart into a persisted sale.
type Submitter struct {
	repo    *Repository
	tx      txRunner
	metrics *metrics.SaleMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewSubmitter wires a Submitter. metrics and logg may be nil.
func NewSubmitter(repo *Repository, tx txRunner, m *metrics.SaleMetrics, logg *logger.Logger) (*Submitter, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Submitter{repo: repo, tx: tx, metrics: m, logg: logg, now: time.Now}, nil
}

// Submit writes the sale header and one line per cart line in a single
// transaction, then clears the cart. On failure the cart is left as it was.
func (s *Submitter) Submit(ctx context.Context, c *cart.Cart, employeeID uuid.UUID, method enums.PaymentMethod) (*SaleDTO, error) {
	if c == nil || c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if employeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id is required")
	}
	if !method.IsValid() {
		return nil, pkgerrors.FieldErrors(map[string]string{"payment_method": "must be one of: cash card"})
	}

	sale := &models.Sale{
		ID:            uuid.New(),
		SoldAt:        s.now().UTC(),
		Total:         c.Total(),
		EmployeeID:    employeeID,
		PaymentMethod: method,
	}
	cartLines := c.Lines()
	lines := make([]models.SaleLine, 0, len(cartLines))
	for _, line := range cartLines {
		lines = append(lines, models.SaleLine{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			DishID:    line.Item.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.Item.Price,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateSale(ctx, sale); err != nil {
			return err
		}
		return repo.CreateLines(ctx, lines)
	})
	if err != nil {
		s.metrics.IncFailure()
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "item_count", c.ItemCount()), "sale.submit_failed", err)
		}
		return nil, pkgerrors.ClassifyDB(err, "record sale")
	}

	s.metrics.ObserveSale(method.String(), sale.Total)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"sale_id":        sale.ID.String(),
			"total":          sale.Total.StringFixed(2),
			"payment_method": method.String(),
		}), "sale.submitted")
	}

	namesByDish := make(map[uuid.UUID]string, len(cartLines))
	for _, line := range cartLines {
		namesByDish[line.Item.ID] = line.Item.Name
	}
	c.Clear()

	dto := NewSaleDTO(*sale)
	for _, line := range lines {
		dto.Lines = append(dto.Lines, SaleLineDTO{
			ID:        line.ID,
			DishID:    line.DishID,
			DishName:  namesByDish[line.DishID],
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		})
	}
	return &dto, nil
}

// Checkout submits the employee's session cart and stores the cleared cart.
type Checkout struct {
	carts     cart.Service
	submitter *Submitter
	logg      *logger.Logger
}

func NewCheckout(carts cart.Service, submitter *Submitter, logg *logger.Logger) (*Checkout, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter required")
	}
	return &Checkout{carts: carts, submitter: submitter, logg: logg}, nil
}

// Submit records the sale for the employee's open ticket. The sale stands
// even if the emptied ticket cannot be stored afterwards.
func (c *Checkout) Submit(ctx context.Context, employeeID uuid.UUID, method enums.PaymentMethod) (*SaleDTO, error) {
	current, err := c.carts.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	sale, err := c.submitter.Submit(ctx, current, employeeID, method)
	if err != nil {
		return nil, err
	}
	if err := c.carts.Save(ctx, employeeID, current); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "sale.cart_clear_failed")
	}
	return sale, nil
}
