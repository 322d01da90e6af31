package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyReturned     = errors.New("transaction already returned")
)

// StockConflictDetail identifies one product line whose live stock fell below
// the requested quantity between add time and commit time.
type StockConflictDetail struct {
	ItemID    uuid.UUID `json:"item_id"`
	Name      string    `json:"name"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// StockConflictError carries the full list of offending lines so the caller
// can display every shortage at once.
type StockConflictError struct {
	Details []StockConflictDetail
}

func (e *StockConflictError) Error() string {
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = fmt.Sprintf("%s: requested %d, available %d", d.Name, d.Requested, d.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// TransactionRepository persists committed sales and processes returns
type TransactionRepository interface {
	// CreateSale commits the sale as one database transaction: stock
	// re-validation, stock decrement, transaction insert, and point accrual
	// all succeed or all roll back. Returns the updated customer when points
	// were accrued, nil otherwise.
	CreateSale(ctx context.Context, t *domain.Transaction, points, upgradeThreshold int) (*domain.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// Return restores stock for the product lines of a stored snapshot and
	// marks the transaction returned, atomically. A second call fails with
	// ErrAlreadyReturned.
	Return(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// requestedQuantities aggregates product quantities across lines, so a cart
// holding the same product twice is validated against the combined demand.
func requestedQuantities(items []domain.TransactionItem) ([]uuid.UUID, map[uuid.UUID]int, map[uuid.UUID]string) {
	order := []uuid.UUID{}
	qty := map[uuid.UUID]int{}
	names := map[uuid.UUID]string{}
	for _, it := range items {
		if it.Kind != domain.LineKindProduct {
			continue
		}
		if _, seen := qty[it.ItemID]; !seen {
			order = append(order, it.ItemID)
			names[it.ItemID] = it.Name
		}
		qty[it.ItemID] += it.Quantity
	}
	return order, qty, names
}

func (r *transactionRepository) CreateSale(ctx context.Context, t *domain.Transaction, points, upgradeThreshold int) (*domain.Customer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock each product row and re-validate quantities against live stock.
	// This is the sole admission-control point for concurrent checkouts.
	order, qty, names := requestedQuantities(t.Items)
	var conflicts []StockConflictDetail
	for _, id := range order {
		var stock int
		err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to lock stock row: %w", err)
		}
		if stock < qty[id] {
			conflicts = append(conflicts, StockConflictDetail{
				ItemID:    id,
				Name:      names[id],
				Requested: qty[id],
				Available: stock,
			})
		}
	}
	if len(conflicts) > 0 {
		return nil, &StockConflictError{Details: conflicts}
	}

	for _, id := range order {
		ct, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1`,
			id, qty[id],
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if n, err := ct.RowsAffected(); err != nil || n != 1 {
			return nil, fmt.Errorf("failed to decrement stock for product %s", id)
		}
	}

	itemsJSON, err := json.Marshal(t.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize cart snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, customer_id, subtotal, discount, tax, total, payment_method, items, returned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		t.ID, t.CustomerID, t.Subtotal, t.Discount, t.Tax, t.Total,
		t.PaymentMethod, itemsJSON, false, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	var customer *domain.Customer
	if t.CustomerID != nil && points > 0 {
		customer, err = addPoints(ctx, tx, *t.CustomerID, points, upgradeThreshold)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	return customer, nil
}

const transactionColumns = "id, customer_id, subtotal, discount, tax, total, payment_method, items, returned, created_at"

func scanTransaction(row interface{ Scan(...any) error }) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var itemsJSON []byte
	err := row.Scan(
		&t.ID, &t.CustomerID, &t.Subtotal, &t.Discount, &t.Tax, &t.Total,
		&t.PaymentMethod, &itemsJSON, &t.Returned, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &t.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
	}
	return t, nil
}

// FindByID retrieves a committed transaction with its cart snapshot
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID: %w", err)
	}

	return t, nil
}

func (r *transactionRepository) Return(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the row so two concurrent returns cannot both pass the
	// returned-flag check and double-restore stock.
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	t, err := scanTransaction(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if t.Returned {
		return nil, ErrAlreadyReturned
	}

	// Service lines carry no stock and are skipped.
	order, qty, _ := requestedQuantities(t.Items)
	for _, productID := range order {
		_, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
			productID, qty[productID],
		)
		if err != nil {
			return nil, fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE transactions SET returned = TRUE WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to mark transaction returned: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit return: %w", err)
	}

	t.Returned = true
	return t, nil
}
