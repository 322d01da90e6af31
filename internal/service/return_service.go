package service

import (
	"context"
	"errors"
	"fmt"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReturnService reverses committed sales. Stock is restored from the stored
// cart snapshot, never from live catalog state; loyalty points and payment
// are not reversed.
type ReturnService interface {
	ProcessReturn(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
	// GetTransaction is the receipt/history lookup used by reporting reads.
	GetTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
}

type returnService struct {
	transactions repository.TransactionRepository
	logger       *zap.Logger
}

// NewReturnService creates a new instance of ReturnService
func NewReturnService(transactions repository.TransactionRepository, logger *zap.Logger) ReturnService {
	return &returnService{transactions: transactions, logger: logger}
}

func (s *returnService) ProcessReturn(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	t, err := s.transactions.Return(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) || errors.Is(err, repository.ErrAlreadyReturned) {
			return nil, err
		}
		s.logger.Error("Return failed",
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	s.logger.Info("Transaction returned",
		zap.String("transaction_id", t.ID.String()),
	)

	return t, nil
}

func (s *returnService) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	return s.transactions.FindByID(ctx, transactionID)
}
