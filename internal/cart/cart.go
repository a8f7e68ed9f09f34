package cart

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/enums"
	"github.com/shopspring/decimal"
)

// Item is the dish snapshot a cart line was built from. The price is frozen
// when the dish is first added so later menu edits do not move an open ticket.
type Item struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Price    decimal.Decimal    `json:"price"`
	Category enums.DishCategory `json:"category"`
}

// ItemFromDish snapshots a catalog dish.
func ItemFromDish(d models.Dish) Item {
	return Item{
		ID:       d.ID,
		Name:     d.Name,
		Price:    d.Price,
		Category: d.Category,
	}
}

// Line is one distinct item and how many of it are on the ticket.
type Line struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}

// Subtotal returns price × quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered ticket with at most one line per item. Lines keep the
// order in which items were first added. A Cart is not safe for concurrent
// use; sessions are loaded, mutated and saved per request.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem bumps the quantity of an existing line or appends a new one.
func (c *Cart) AddItem(item Item) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line. Unknown items are ignored.
func (c *Cart) UpdateQuantity(itemID uuid.UUID, quantity int) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.removeAt(i)
		return
	}
	c.lines[i].Quantity = quantity
}

// RemoveItem drops the line for itemID if present.
func (c *Cart) RemoveItem(itemID uuid.UUID) {
	if i := c.index(itemID); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums every line subtotal.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

// Quantity returns the quantity on the line for itemID, or zero.
func (c *Cart) Quantity(itemID uuid.UUID) int {
	if i := c.index(itemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) index(itemID uuid.UUID) int {
	for i, line := range c.lines {
		if line.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

type cartJSON struct {
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// MarshalJSON renders the lines along with the derived totals.
func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(cartJSON{
		Lines:     lines,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	})
}

// UnmarshalJSON restores the lines. Derived totals are recomputed and lines
// with a non-positive quantity are dropped.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var payload cartJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	c.lines = nil
	for _, line := range payload.Lines {
		if line.Quantity <= 0 {
			continue
		}
		if i := c.index(line.Item.ID); i >= 0 {
			c.lines[i].Quantity += line.Quantity
			continue
		}
		c.lines = append(c.lines, line)
	}
	return nil
}
