package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/pricing"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoPaymentSelected   = errors.New("no payment method selected")
	ErrTenderedRequired    = errors.New("cash payment requires a tendered amount")
	ErrInsufficientPayment = errors.New("tendered amount is less than the total")
	ErrPersistenceFailure  = errors.New("persistence failure")
)

// SessionState tracks where a checkout session is in its lifecycle.
type SessionState string

const (
	StateEmpty           SessionState = "empty"
	StatePriced          SessionState = "priced"
	StateAwaitingPayment SessionState = "awaiting_payment"
	StateCommitted       SessionState = "committed"
)

// Payment is the selected method plus the cash tendered/change pair.
type Payment struct {
	Method   domain.PaymentMethod
	Tendered *decimal.Decimal
	Change   *decimal.Decimal
}

// Session is a snapshot of one checkout session's state.
type Session struct {
	ID       uuid.UUID
	Customer *domain.Customer
	Lines    []domain.Line
	State    SessionState
	Quote    pricing.Quote
	Payment  *Payment
}

// CheckoutService drives the checkout state machine:
// empty -> priced -> awaiting_payment -> committed, with an explicit clear
// back to empty from any state. Pricing is recomputed on every cart change;
// stock and points are only touched inside Commit.
type CheckoutService interface {
	NewSession(ctx context.Context, customerID *uuid.UUID) (*Session, error)
	GetSession(sessionID uuid.UUID) (*Session, error)
	AddProduct(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*Session, error)
	AddService(ctx context.Context, sessionID, serviceID uuid.UUID) (*Session, error)
	RemoveLine(ctx context.Context, sessionID uuid.UUID, index int) (*Session, error)
	Clear(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	SelectPayment(ctx context.Context, sessionID uuid.UUID, method domain.PaymentMethod, tendered *decimal.Decimal) (*Session, error)
	Commit(ctx context.Context, sessionID uuid.UUID) (*domain.Receipt, error)
}

type session struct {
	id       uuid.UUID
	customer *domain.Customer
	cart     *domain.Cart
	state    SessionState
	quote    pricing.Quote
	payment  *Payment
}

type checkoutService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	products     repository.ProductRepository
	services     repository.ServiceRepository
	customers    repository.CustomerRepository
	transactions repository.TransactionRepository

	engine          *pricing.Engine
	pointsThreshold int
	commitTimeout   time.Duration
	logger          *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	products repository.ProductRepository,
	services repository.ServiceRepository,
	customers repository.CustomerRepository,
	transactions repository.TransactionRepository,
	engine *pricing.Engine,
	pointsThreshold int,
	commitTimeout time.Duration,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		sessions:        make(map[uuid.UUID]*session),
		products:        products,
		services:        services,
		customers:       customers,
		transactions:    transactions,
		engine:          engine,
		pointsThreshold: pointsThreshold,
		commitTimeout:   commitTimeout,
		logger:          logger,
	}
}

func (s *checkoutService) snapshot(sess *session) *Session {
	return &Session{
		ID:       sess.id,
		Customer: sess.customer,
		Lines:    sess.cart.Lines(),
		State:    sess.state,
		Quote:    sess.quote,
		Payment:  sess.payment,
	}
}

// reprice recomputes totals after any cart change and invalidates a
// previously selected payment, since the total it was checked against is
// stale.
func (s *checkoutService) reprice(sess *session) {
	sess.quote = s.engine.Quote(sess.cart.Lines(), s.tierOf(sess))
	sess.payment = nil
	if sess.cart.IsEmpty() {
		sess.state = StateEmpty
	} else {
		sess.state = StatePriced
	}
}

func (s *checkoutService) tierOf(sess *session) *domain.Tier {
	if sess.customer == nil {
		return nil
	}
	return &sess.customer.Tier
}

func (s *checkoutService) NewSession(ctx context.Context, customerID *uuid.UUID) (*Session, error) {
	var customer *domain.Customer
	if customerID != nil {
		var err error
		customer, err = s.customers.FindByID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
	}

	sess := &session{
		id:       uuid.New(),
		customer: customer,
		cart:     domain.NewCart(),
		state:    StateEmpty,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return s.snapshot(sess), nil
}

func (s *checkoutService) GetSession(sessionID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.snapshot(sess), nil
}

func (s *checkoutService) AddProduct(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*Session, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := sess.cart.AddProduct(product, quantity); err != nil {
		return nil, err
	}
	s.reprice(sess)

	return s.snapshot(sess), nil
}

func (s *checkoutService) AddService(ctx context.Context, sessionID, serviceID uuid.UUID) (*Session, error) {
	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.cart.AddService(svc)
	s.reprice(sess)

	return s.snapshot(sess), nil
}

func (s *checkoutService) RemoveLine(ctx context.Context, sessionID uuid.UUID, index int) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := sess.cart.RemoveLine(index); err != nil {
		return nil, err
	}
	s.reprice(sess)

	return s.snapshot(sess), nil
}

func (s *checkoutService) Clear(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.cart.Clear()
	sess.payment = nil
	sess.quote = pricing.Quote{}
	sess.state = StateEmpty

	return s.snapshot(sess), nil
}

func (s *checkoutService) SelectPayment(ctx context.Context, sessionID uuid.UUID, method domain.PaymentMethod, tendered *decimal.Decimal) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	payment := &Payment{Method: method}
	if method == domain.PaymentCash {
		if tendered == nil {
			return nil, ErrTenderedRequired
		}
		if tendered.LessThan(sess.quote.Total) {
			return nil, ErrInsufficientPayment
		}
		change := tendered.Sub(sess.quote.Total)
		payment.Tendered = tendered
		payment.Change = &change
	}

	sess.payment = payment
	sess.state = StateAwaitingPayment

	return s.snapshot(sess), nil
}

func (s *checkoutService) Commit(ctx context.Context, sessionID uuid.UUID) (*domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if sess.state != StateAwaitingPayment || sess.payment == nil {
		return nil, ErrNoPaymentSelected
	}

	t := &domain.Transaction{
		ID:            uuid.New(),
		Subtotal:      sess.quote.Subtotal,
		Discount:      sess.quote.Discount,
		Tax:           sess.quote.Tax,
		Total:         sess.quote.Total,
		PaymentMethod: sess.payment.Method,
		Items:         domain.SnapshotLines(sess.cart.Lines()),
		CreatedAt:     time.Now().UTC(),
	}
	points := 0
	if sess.customer != nil {
		id := sess.customer.ID
		t.CustomerID = &id
		points = int(sess.quote.Total.IntPart())
	}

	// The commit is the one operation with a transactional boundary; bound it
	// with a deadline so a wedged store cannot hang the terminal.
	commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	customer, err := s.transactions.CreateSale(commitCtx, t, points, s.pointsThreshold)
	if err != nil {
		var conflict *repository.StockConflictError
		switch {
		case errors.As(err, &conflict), errors.Is(err, repository.ErrProductNotFound):
			// Advisory state is stale; the session stays in awaiting_payment
			// so the operator can fix the cart and retry.
			return nil, err
		default:
			s.logger.Error("Sale commit failed",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
		}
	}

	receipt := &domain.Receipt{
		TransactionID: t.ID,
		Customer:      customer,
		Lines:         t.Items,
		Subtotal:      t.Subtotal,
		Discount:      t.Discount,
		Tax:           t.Tax,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		Tendered:      sess.payment.Tendered,
		Change:        sess.payment.Change,
		PointsEarned:  points,
		CreatedAt:     t.CreatedAt,
	}

	s.logger.Info("Sale committed",
		zap.String("transaction_id", t.ID.String()),
		zap.String("total", t.Total.String()),
		zap.String("payment_method", string(t.PaymentMethod)),
		zap.Int("points_earned", points),
	)

	// Reset for the next sale; the customer stays attached to the terminal.
	sess.cart.Clear()
	sess.payment = nil
	sess.quote = pricing.Quote{}
	sess.state = StateEmpty
	if customer != nil {
		sess.customer = customer
	}

	return receipt, nil
}
