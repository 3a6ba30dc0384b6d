package cart

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Item is the catalog data a cart line carries for display.
// The cart never looks prices up itself; submission re-reads the catalog.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref,omitempty"`
}

// Line is one product and its quantity. Quantity is always >= 1 while the line exists.
type Line struct {
	Item
	Quantity int `json:"quantity"`
}

// Amount is UnitPrice x Quantity
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the per-session ledger of selected products.
// Lines keep insertion order and hold at most one entry per product.
type Cart struct {
	lines []Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// Restore rebuilds a cart from persisted lines, rejecting any state the
// ledger itself could never have produced.
func Restore(lines []Line) (*Cart, error) {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	c := &Cart{lines: make([]Line, 0, len(lines))}
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_CART_LINE", "Cart line is missing a product")
		}
		if l.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Cart line %s has non-positive quantity %d", l.ProductID, l.Quantity))
		}
		if _, dup := seen[l.ProductID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_CART_LINE", fmt.Sprintf("Product %s appears twice in cart", l.ProductID))
		}
		seen[l.ProductID] = struct{}{}
		c.lines = append(c.lines, l)
	}
	return c, nil
}

// AddItem increments the quantity of an existing line or appends a new line with quantity 1
func (c *Cart) AddItem(item Item) {
	if i := c.indexOf(item.ProductID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// RemoveItem drops the line for productID. Missing products are ignored.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// SetQuantity replaces a line's quantity. quantity <= 0 removes the line.
// Products not already in the cart are ignored.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	if i := c.indexOf(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Total is recomputed from the lines on every call
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line for productID, if present
func (c *Cart) Line(productID uuid.UUID) (Line, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Len is the number of distinct products
func (c *Cart) Len() int {
	return len(c.lines)
}

// ItemCount is the sum of all quantities
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// MarshalJSON stores only the lines; the total is never persisted
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines []Line `json:"lines"`
	}{Lines: c.Lines()})
}

// UnmarshalJSON restores through Restore so stored state is re-validated
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lines []Line `json:"lines"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	restored, err := Restore(raw.Lines)
	if err != nil {
		return err
	}
	c.lines = restored.lines
	return nil
}
