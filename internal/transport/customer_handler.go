package transport

import (
	"net/http"

	"retail-pos/internal/domain"
	"retail-pos/internal/middleware"
	"retail-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterCustomerRequest represents the customer registration payload
type RegisterCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Tier  string `json:"tier" validate:"omitempty,oneof=Regular Student VIP"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

// AddPointsRequest accrues loyalty points outside of a checkout (e.g. a
// promotion credit entered at the registry).
type AddPointsRequest struct {
	Points int `json:"points" validate:"required,gt=0"`
}

// SetTierRequest changes a customer's loyalty tier
type SetTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=Regular Student VIP"`
}

// CustomerHandler handles HTTP requests for the customer ledger
type CustomerHandler struct {
	customers service.CustomerService
	logger    *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Register)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/points", h.AddPoints)
		r.Put("/{id}/tier", h.SetTier)
	})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tier := domain.TierRegular
	if req.Tier != "" {
		tier = domain.Tier(req.Tier)
	}

	customer, err := h.customers.Register(r.Context(), req.Name, tier, req.Phone, req.Email)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Customer registered", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req AddPointsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	customer, err := h.customers.AddPoints(r.Context(), id, req.Points)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req SetTierRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.customers.SetTier(r.Context(), id, domain.Tier(req.Tier)); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	customer, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}
