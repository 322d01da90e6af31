package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
)

var ErrServiceNotFound = errors.New("service not found")

// ServiceRepository defines the interface for service catalog access
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	List(ctx context.Context) ([]*domain.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Service, error)
}

type serviceRepository struct {
	db *sql.DB
}

// NewServiceRepository creates a new instance of ServiceRepository
func NewServiceRepository(db *sql.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

// Create inserts a new service into the catalog
func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) error {
	query := `
		INSERT INTO services (id, name, price, duration_minutes, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		service.ID,
		service.Name,
		service.Price,
		service.DurationMinutes,
		service.Category,
		service.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	return nil
}

// List retrieves all services ordered by name
func (r *serviceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	query := `
		SELECT id, name, price, duration_minutes, category, created_at
		FROM services ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	services := []*domain.Service{}
	for rows.Next() {
		s := &domain.Service{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.Category, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating services: %w", err)
	}

	return services, nil
}

// FindByID retrieves a service by ID
func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	query := `
		SELECT id, name, price, duration_minutes, category, created_at
		FROM services WHERE id = $1
	`

	s := &domain.Service{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Price, &s.DurationMinutes, &s.Category, &s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service by ID: %w", err)
	}

	return s, nil
}
