package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrOutOfStock      = errors.New("requested quantity exceeds available stock")
	ErrIndexOutOfRange = errors.New("cart line index out of range")
)

// LineKind distinguishes product lines (stock-bearing) from service lines.
type LineKind string

const (
	LineKindProduct LineKind = "product"
	LineKindService LineKind = "service"
)

// Line is one entry in a cart. The unit price is frozen at add time so later
// catalog price changes do not affect an open cart or a stored transaction.
type Line struct {
	Kind      LineKind        `json:"type"`
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Cart is the ordered list of lines for a single checkout session. It never
// touches persisted stock; the stock check on AddProduct is advisory and is
// re-validated authoritatively at commit time.
type Cart struct {
	lines []Line
}

func NewCart() *Cart {
	return &Cart{}
}

// AddProduct appends a product line with the price frozen at the current
// catalog price.
func (c *Cart) AddProduct(p *Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrOutOfStock
	}
	c.lines = append(c.lines, Line{
		Kind:      LineKindProduct,
		ItemID:    p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		LineTotal: p.Price.Mul(decimal.NewFromInt(int64(quantity))),
	})
	return nil
}

// AddService appends a service line. Services always sell with quantity 1.
func (c *Cart) AddService(s *Service) {
	c.lines = append(c.lines, Line{
		Kind:      LineKindService,
		ItemID:    s.ID,
		Name:      s.Name,
		UnitPrice: s.Price,
		Quantity:  1,
		LineTotal: s.Price,
	})
}

// RemoveLine deletes the line at the given zero-based index.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrIndexOutOfRange
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines in insertion order.
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
