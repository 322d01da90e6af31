package transport

import (
	"errors"
	"net/http"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/middleware"
	"retail-pos/internal/repository"
	"retail-pos/internal/service"

	"go.uber.org/zap"
)

// respondServiceError maps domain/repository/service sentinels onto HTTP
// statuses. Cart and pricing errors are retryable by the caller; conflicts
// carry enough detail for the operator to fix the cart.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var conflict *repository.StockConflictError
	if errors.As(err, &conflict) {
		middleware.RespondWithJSON(w, http.StatusConflict, middleware.ErrorResponse{
			Error: middleware.ErrorDetail{
				Code:    "StockConflict",
				Message: conflict.Error(),
				Details: map[string]interface{}{
					"lines": conflict.Details,
				},
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrIndexOutOfRange):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrServiceNotFound),
		errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrTransactionNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, repository.ErrStockUnderflow),
		errors.Is(err, repository.ErrAlreadyReturned),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNoPaymentSelected),
		errors.Is(err, service.ErrTenderedRequired),
		errors.Is(err, service.ErrInsufficientPayment):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())

	default:
		logger.Error("Unexpected service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes and validates a JSON request body, writing the error
// response itself when the payload is bad.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
