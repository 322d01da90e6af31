package service

import (
	"context"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
)

// CustomerService is the customer ledger: identity, loyalty tier, and points.
type CustomerService interface {
	Register(ctx context.Context, name string, tier domain.Tier, phone, email string) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	// AddPoints accrues points and applies the threshold upgrade policy
	// atomically with the accrual.
	AddPoints(ctx context.Context, id uuid.UUID, points int) (*domain.Customer, error)
	SetTier(ctx context.Context, id uuid.UUID, tier domain.Tier) error
}

type customerService struct {
	customers       repository.CustomerRepository
	pointsThreshold int
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(customers repository.CustomerRepository, pointsThreshold int) CustomerService {
	return &customerService{customers: customers, pointsThreshold: pointsThreshold}
}

func (s *customerService) Register(ctx context.Context, name string, tier domain.Tier, phone, email string) (*domain.Customer, error) {
	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      name,
		Tier:      tier,
		Points:    0,
		Phone:     phone,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *customerService) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.customers.List(ctx)
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *customerService) AddPoints(ctx context.Context, id uuid.UUID, points int) (*domain.Customer, error) {
	return s.customers.AddPoints(ctx, id, points, s.pointsThreshold)
}

func (s *customerService) SetTier(ctx context.Context, id uuid.UUID, tier domain.Tier) error {
	return s.customers.SetTier(ctx, id, tier)
}
