package service

import (
	"context"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
)

// CatalogService exposes the read-only catalog view plus the manual stock
// correction the inventory tooling needs.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListServices(ctx context.Context) ([]*domain.Service, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Product, error)
}

type catalogService struct {
	products repository.ProductRepository
	services repository.ServiceRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository, services repository.ServiceRepository) CatalogService {
	return &catalogService{products: products, services: services}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *catalogService) ListServices(ctx context.Context) ([]*domain.Service, error) {
	return s.services.List(ctx)
}

func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Product, error) {
	return s.products.AdjustStock(ctx, id, delta)
}
