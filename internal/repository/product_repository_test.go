package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestAdjustStock(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	p := createTestProduct(t, "29.99", 10)

	updated, err := repo.AdjustStock(ctx, p.ID, 5)
	if err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if updated.Stock != 15 {
		t.Errorf("expected stock 15, got %d", updated.Stock)
	}

	updated, err = repo.AdjustStock(ctx, p.ID, -15)
	if err != nil {
		t.Fatalf("AdjustStock failed: %v", err)
	}
	if updated.Stock != 0 {
		t.Errorf("expected stock 0, got %d", updated.Stock)
	}
}

func TestAdjustStock_Underflow(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	p := createTestProduct(t, "9.99", 3)

	if _, err := repo.AdjustStock(ctx, p.ID, -4); !errors.Is(err, ErrStockUnderflow) {
		t.Errorf("expected ErrStockUnderflow, got %v", err)
	}

	// The rejected adjustment must leave stock untouched.
	found, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Stock != 3 {
		t.Errorf("expected stock 3, got %d", found.Stock)
	}
}

func TestAdjustStock_NotFound(t *testing.T) {
	repo := NewProductRepository(testDB)

	if _, err := repo.AdjustStock(context.Background(), uuid.New(), 1); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductFindByID_NotFound(t *testing.T) {
	repo := NewProductRepository(testDB)

	if _, err := repo.FindByID(context.Background(), uuid.New()); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
