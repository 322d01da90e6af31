package pricing

import (
	"testing"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func testRates() RateTable {
	return RateTable{
		Discounts: map[domain.Tier]decimal.Decimal{
			domain.TierRegular: decimal.RequireFromString("0.05"),
			domain.TierStudent: decimal.RequireFromString("0.10"),
			domain.TierVIP:     decimal.RequireFromString("0.15"),
		},
		TaxRate: decimal.RequireFromString("0.10"),
	}
}

func productLine(price string, qty int) domain.Line {
	p := decimal.RequireFromString(price)
	return domain.Line{
		Kind:      domain.LineKindProduct,
		ItemID:    uuid.New(),
		UnitPrice: p,
		Quantity:  qty,
		LineTotal: p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func serviceLine(price string) domain.Line {
	p := decimal.RequireFromString(price)
	return domain.Line{
		Kind:      domain.LineKindService,
		ItemID:    uuid.New(),
		UnitPrice: p,
		Quantity:  1,
		LineTotal: p,
	}
}

// Cart [product $10 x2, service $5] for a VIP at 10% tax:
// subtotal 25.00, discount 3.75, tax 2.13 (rounded), total 23.38.
func TestQuote_VIPScenario(t *testing.T) {
	engine := NewEngine(testRates())
	tier := domain.TierVIP

	q := engine.Quote([]domain.Line{
		productLine("10.00", 2),
		serviceLine("5.00"),
	}, &tier)

	for name, got := range map[string]struct {
		actual   decimal.Decimal
		expected string
	}{
		"subtotal": {q.Subtotal, "25.00"},
		"discount": {q.Discount, "3.75"},
		"tax":      {q.Tax, "2.13"},
		"total":    {q.Total, "23.38"},
	} {
		if !got.actual.Equal(decimal.RequireFromString(got.expected)) {
			t.Errorf("%s: expected %s, got %s", name, got.expected, got.actual)
		}
	}
}

func TestQuote_NoCustomerNoDiscount(t *testing.T) {
	engine := NewEngine(testRates())

	q := engine.Quote([]domain.Line{productLine("10.00", 1)}, nil)

	if !q.Discount.IsZero() {
		t.Errorf("expected zero discount without a customer, got %s", q.Discount)
	}
	if !q.Tax.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("expected tax 1.00, got %s", q.Tax)
	}
	if !q.Total.Equal(decimal.RequireFromString("11.00")) {
		t.Errorf("expected total 11.00, got %s", q.Total)
	}
}

func TestQuote_EmptyCart(t *testing.T) {
	engine := NewEngine(testRates())
	tier := domain.TierStudent

	q := engine.Quote(nil, &tier)

	if !q.Subtotal.IsZero() || !q.Discount.IsZero() || !q.Tax.IsZero() || !q.Total.IsZero() {
		t.Errorf("expected all-zero quote for empty cart, got %+v", q)
	}
}

// Property: total == subtotal - discount + tax, exactly, for arbitrary carts
// and every tier, and every component has at most two decimal places.
func TestProperty_QuoteInvariant(t *testing.T) {
	engine := NewEngine(testRates())
	properties := gopter.NewProperties(nil)

	tiers := []*domain.Tier{nil}
	for _, tr := range []domain.Tier{domain.TierRegular, domain.TierStudent, domain.TierVIP} {
		tier := tr
		tiers = append(tiers, &tier)
	}

	properties.Property("total equals subtotal minus discount plus tax", prop.ForAll(
		func(priceCents []int, quantities []int, tierIdx int) bool {
			var lines []domain.Line
			for i, cents := range priceCents {
				if cents < 1 {
					cents = 1
				}
				qty := 1
				if i < len(quantities) && quantities[i] > 0 {
					qty = quantities[i]%20 + 1
				}
				price := decimal.New(int64(cents), -2)
				lines = append(lines, domain.Line{
					Kind:      domain.LineKindProduct,
					ItemID:    uuid.New(),
					UnitPrice: price,
					Quantity:  qty,
					LineTotal: price.Mul(decimal.NewFromInt(int64(qty))),
				})
			}

			tier := tiers[tierIdx%len(tiers)]
			q := engine.Quote(lines, tier)

			if !q.Total.Equal(q.Subtotal.Sub(q.Discount).Add(q.Tax)) {
				t.Logf("FAIL: invariant broken: %+v", q)
				return false
			}
			for _, d := range []decimal.Decimal{q.Subtotal, q.Discount, q.Tax, q.Total} {
				if d.Exponent() < -2 {
					t.Logf("FAIL: sub-cent precision leaked: %s", d)
					return false
				}
			}
			if q.Discount.GreaterThan(q.Subtotal) {
				t.Logf("FAIL: discount exceeds subtotal: %+v", q)
				return false
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 100000)),
		gen.SliceOf(gen.IntRange(1, 20)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// Repeated quoting of the same cart must be stable: the engine is pure and
// must not accumulate drift across calls.
func TestQuote_RepeatedCallsStable(t *testing.T) {
	engine := NewEngine(testRates())
	tier := domain.TierRegular
	lines := []domain.Line{
		productLine("0.10", 3),
		productLine("0.01", 7),
		serviceLine("0.02"),
	}

	first := engine.Quote(lines, &tier)
	for i := 0; i < 1000; i++ {
		q := engine.Quote(lines, &tier)
		if !q.Total.Equal(first.Total) || !q.Tax.Equal(first.Tax) {
			t.Fatalf("quote drifted on call %d: %+v vs %+v", i, q, first)
		}
	}
}
