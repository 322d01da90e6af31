package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository defines the interface for the customer ledger
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	List(ctx context.Context) ([]*domain.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	SetTier(ctx context.Context, id uuid.UUID, tier domain.Tier) error
	AddPoints(ctx context.Context, id uuid.UUID, points, upgradeThreshold int) (*domain.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = "id, name, tier, points, phone, email, created_at, updated_at"

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(&c.ID, &c.Name, &c.Tier, &c.Points, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new customer
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, tier, points, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Tier,
		customer.Points,
		customer.Phone,
		customer.Email,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// List retrieves all customers ordered by name
func (r *customerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return c, nil
}

// SetTier updates a customer's loyalty tier
func (r *customerRepository) SetTier(ctx context.Context, id uuid.UUID, tier domain.Tier) error {
	query := `UPDATE customers SET tier = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, tier)
	if err != nil {
		return fmt.Errorf("failed to set tier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// AddPoints accrues loyalty points and applies the upgrade policy in a single
// statement, so the accrual and the tier change cannot be observed apart.
// Crossing the threshold promotes straight to VIP unless already there.
func (r *customerRepository) AddPoints(ctx context.Context, id uuid.UUID, points, upgradeThreshold int) (*domain.Customer, error) {
	return addPoints(ctx, r.db, id, points, upgradeThreshold)
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// addPoints is shared with the checkout transaction path, which runs it on an
// *sql.Tx so the accrual commits or rolls back with the sale.
func addPoints(ctx context.Context, q execQuerier, id uuid.UUID, points, upgradeThreshold int) (*domain.Customer, error) {
	query := `
		UPDATE customers
		SET points = points + $2,
		    tier = CASE
		        WHEN points + $2 >= $3 AND tier <> 'VIP' THEN 'VIP'
		        ELSE tier
		    END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns

	c, err := scanCustomer(q.QueryRowContext(ctx, query, id, points, upgradeThreshold))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to add points: %w", err)
	}

	return c, nil
}
