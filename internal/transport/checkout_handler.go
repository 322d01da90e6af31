package transport

import (
	"net/http"
	"strconv"

	"retail-pos/internal/domain"
	"retail-pos/internal/middleware"
	"retail-pos/internal/pricing"
	"retail-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateSessionRequest opens a checkout session, optionally attached to a
// customer for tier discounts and point accrual.
type CreateSessionRequest struct {
	CustomerID *string `json:"customer_id" validate:"omitempty,uuid"`
}

// AddLineRequest appends a product or service line to the cart
type AddLineRequest struct {
	Type     string `json:"type" validate:"required,oneof=product service"`
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity"`
}

// SelectPaymentRequest selects a payment method; tendered is required for cash
type SelectPaymentRequest struct {
	Method   string           `json:"method" validate:"required,oneof=cash credit_card debit_card mobile"`
	Tendered *decimal.Decimal `json:"tendered"`
}

// ReturnRequest reverses a previously committed transaction
type ReturnRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
}

// PaymentResponse mirrors the selected payment in session responses
type PaymentResponse struct {
	Method   string           `json:"method"`
	Tendered *decimal.Decimal `json:"tendered,omitempty"`
	Change   *decimal.Decimal `json:"change,omitempty"`
}

// SessionResponse is the session snapshot returned after every mutation
type SessionResponse struct {
	ID       string           `json:"id"`
	State    string           `json:"state"`
	Customer *domain.Customer `json:"customer,omitempty"`
	Lines    []domain.Line    `json:"lines"`
	Totals   pricing.Quote    `json:"totals"`
	Payment  *PaymentResponse `json:"payment,omitempty"`
}

func toSessionResponse(s *service.Session) SessionResponse {
	resp := SessionResponse{
		ID:       s.ID.String(),
		State:    string(s.State),
		Customer: s.Customer,
		Lines:    s.Lines,
		Totals:   s.Quote,
	}
	if s.Payment != nil {
		resp.Payment = &PaymentResponse{
			Method:   string(s.Payment.Method),
			Tendered: s.Payment.Tendered,
			Change:   s.Payment.Change,
		}
	}
	return resp
}

// CheckoutHandler handles HTTP requests for checkout sessions and returns
type CheckoutHandler struct {
	checkout service.CheckoutService
	returns  service.ReturnService
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout service.CheckoutService, returns service.ReturnService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, returns: returns, logger: logger}
}

// RegisterRoutes registers checkout session and return routes
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/checkout/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/lines", h.AddLine)
			r.Delete("/lines/{index}", h.RemoveLine)
			r.Post("/clear", h.Clear)
			r.Get("/totals", h.Totals)
			r.Post("/payment", h.SelectPayment)
			r.Post("/commit", h.Commit)
		})
	})
	r.Post("/api/returns", h.ProcessReturn)
	r.Get("/api/transactions/{id}", h.GetTransaction)
}

func (h *CheckoutHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sid, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return sid, true
}

func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer id")
			return
		}
		customerID = &id
	}

	session, err := h.checkout.NewSession(r.Context(), customerID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Checkout session opened", zap.String("session_id", session.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.checkout.GetSession(sid)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *CheckoutHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req AddLineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var session *service.Session
	if req.Type == "product" {
		session, err = h.checkout.AddProduct(r.Context(), sid, itemID, req.Quantity)
	} else {
		session, err = h.checkout.AddService(r.Context(), sid, itemID)
	}
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *CheckoutHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid line index")
		return
	}

	session, err := h.checkout.RemoveLine(r.Context(), sid, index)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *CheckoutHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.checkout.Clear(r.Context(), sid)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *CheckoutHandler) Totals(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.checkout.GetSession(sid)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, session.Quote)
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SelectPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.checkout.SelectPayment(r.Context(), sid, method, req.Tendered)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *CheckoutHandler) Commit(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	receipt, err := h.checkout.Commit(r.Context(), sid)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, receipt)
}

func (h *CheckoutHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if !decodeBody(w, r, &req) {
		return
	}

	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	transaction, err := h.returns.ProcessReturn(r.Context(), transactionID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, transaction)
}

func (h *CheckoutHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	transaction, err := h.returns.GetTransaction(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, transaction)
}
