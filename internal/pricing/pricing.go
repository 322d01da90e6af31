// Package pricing computes checkout totals. The engine is pure: it has no
// side effects and is safe to call on every cart mutation for live totals.
package pricing

import (
	"retail-pos/internal/domain"

	"github.com/shopspring/decimal"
)

// RateTable is the single configuration surface for discount and tax policy.
// Rates are fractions; any positive fraction below 1 is valid policy.
type RateTable struct {
	Discounts map[domain.Tier]decimal.Decimal
	TaxRate   decimal.Decimal
}

// Quote is the result of pricing a cart. Invariant:
// Total = Subtotal - Discount + Tax, exact on cent-rounded values.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Engine prices carts against a fixed rate table.
type Engine struct {
	rates RateTable
}

func NewEngine(rates RateTable) *Engine {
	return &Engine{rates: rates}
}

// DiscountRate returns the discount fraction for a tier, zero when no
// customer is attached or the tier has no configured rate.
func (e *Engine) DiscountRate(tier *domain.Tier) decimal.Decimal {
	if tier == nil {
		return decimal.Zero
	}
	return e.rates.Discounts[*tier]
}

// Quote derives subtotal, discount, tax and total for the given lines.
// Discount and tax are rounded half-up to the cent before the total is
// assembled, so the quote invariant holds exactly.
func (e *Engine) Quote(lines []domain.Line, tier *domain.Tier) Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}
	subtotal = subtotal.Round(2)

	discount := subtotal.Mul(e.DiscountRate(tier)).Round(2)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(e.rates.TaxRate).Round(2)

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}
}
