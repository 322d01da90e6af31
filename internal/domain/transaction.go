package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the accepted payment methods. Cash is the only
// method that requires a tendered amount.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentMobile     PaymentMethod = "mobile"
)

// ParsePaymentMethod converts a string into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentMobile:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method: %q", s)
	}
}

// TransactionItem is one line of the cart snapshot stored with a committed
// transaction. Returns operate on this snapshot, never on live catalog state.
type TransactionItem struct {
	Kind      LineKind        `json:"type"`
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SnapshotLines freezes cart lines into transaction items.
func SnapshotLines(lines []Line) []TransactionItem {
	items := make([]TransactionItem, len(lines))
	for i, l := range lines {
		items[i] = TransactionItem{
			Kind:      l.Kind,
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal,
		}
	}
	return items
}

// Transaction is a committed sale.
type Transaction struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	CustomerID    *uuid.UUID        `json:"customer_id,omitempty" db:"customer_id"`
	Subtotal      decimal.Decimal   `json:"subtotal" db:"subtotal"`
	Discount      decimal.Decimal   `json:"discount" db:"discount"`
	Tax           decimal.Decimal   `json:"tax" db:"tax"`
	Total         decimal.Decimal   `json:"total" db:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method" db:"payment_method"`
	Items         []TransactionItem `json:"items" db:"items"`
	Returned      bool              `json:"returned" db:"returned"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// Receipt is the immutable payload handed back after a successful commit.
type Receipt struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	Customer      *Customer         `json:"customer,omitempty"`
	Lines         []TransactionItem `json:"lines"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Discount      decimal.Decimal   `json:"discount"`
	Tax           decimal.Decimal   `json:"tax"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Tendered      *decimal.Decimal  `json:"tendered,omitempty"`
	Change        *decimal.Decimal  `json:"change,omitempty"`
	PointsEarned  int               `json:"points_earned"`
	CreatedAt     time.Time         `json:"created_at"`
}
