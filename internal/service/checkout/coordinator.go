package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"callorder/internal/clock"
	"callorder/internal/domain"
	"callorder/internal/payment"
	paymentrepo "callorder/internal/repository/payment"
	cartsvc "callorder/internal/service/cart"
	ordersvc "callorder/internal/service/order"
	"github.com/google/uuid"
)

type cartEngine interface {
	Get(consumerID, businessID string) cartsvc.Snapshot
	Clear(consumerID, businessID string)
}

type orderTracker interface {
	Create(ctx context.Context, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID, note, paymentRef string) (*domain.Order, error)
}

// Coordinator turns a cart into an order and drives the payment
// attempt. It is the only consumer-side path that changes an order's
// payment state.
type Coordinator struct {
	carts    cartEngine
	orders   orderTracker
	attempts paymentrepo.Repository
	gateway  payment.Gateway
	clock    clock.Clock
	timeout  time.Duration
	logger   *log.Logger
}

func NewCoordinator(carts cartEngine, orders orderTracker, attempts paymentrepo.Repository, gateway payment.Gateway, clk clock.Clock, timeout time.Duration, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Coordinator{
		carts:    carts,
		orders:   orders,
		attempts: attempts,
		gateway:  gateway,
		clock:    clk,
		timeout:  timeout,
		logger:   logger,
	}
}

// SubmitInput describes one checkout submission. With OrderID empty a
// new order is created from the pair's cart (self-checkout); with
// OrderID set an existing order awaiting payment is settled, which is
// how the consumer answers an agent's payment request.
type SubmitInput struct {
	ConsumerID string
	BusinessID string
	Method     domain.PaymentMethod
	OrderID    string
}

// Result is what a submission produced. On ErrPaymentFailed and
// ErrPaymentTimeout the order survives for retry and the cart is kept.
type Result struct {
	Order   *domain.Order
	Attempt domain.PaymentAttempt
}

// Submit runs the checkout: validate, snapshot, create or load the
// order, charge the gateway for the order's own total, and apply the
// outcome. The charged amount is always read back from the stored
// order, so a tampered client can never pay less than the catalog sum.
func (c *Coordinator) Submit(ctx context.Context, in SubmitInput) (Result, error) {
	if !domain.ValidPaymentMethod(in.Method) {
		return Result{}, errors.New("unsupported payment method")
	}

	var (
		o   *domain.Order
		err error
	)
	if in.OrderID == "" {
		snap := c.carts.Get(in.ConsumerID, in.BusinessID)
		if len(snap.Items) == 0 {
			return Result{}, domain.ErrEmptyCart
		}
		lines := make([]domain.LineItem, 0, len(snap.Items))
		for _, item := range snap.Items {
			lines = append(lines, domain.LineItem{Name: item.Name, PriceCents: item.PriceCents})
		}
		o, err = c.orders.Create(ctx, ordersvc.CreateInput{
			BusinessID: in.BusinessID,
			ConsumerID: in.ConsumerID,
			Lines:      lines,
			Currency:   snap.Currency,
		})
		if err != nil {
			return Result{}, fmt.Errorf("create order: %w", err)
		}
	} else {
		o, err = c.orders.Get(ctx, in.OrderID)
		if err != nil {
			return Result{}, err
		}
		if o.ConsumerID != in.ConsumerID {
			return Result{}, domain.ErrNotFound
		}
		if o.Status == domain.OrderStatusPaid || o.Status == domain.OrderStatusCompleted {
			return Result{}, domain.ErrOrderAlreadyPaid
		}
		if !ordersvc.CanTransition(o.Status, domain.OrderStatusPaid) {
			return Result{}, domain.ErrInvalidTransition
		}
	}

	if err := c.supersedeOpenAttempt(ctx, o.ID); err != nil {
		return Result{}, err
	}

	attempt := domain.PaymentAttempt{
		ID:          uuid.NewString(),
		OrderID:     o.ID,
		AmountCents: o.TotalCents,
		Method:      in.Method,
		Result:      domain.PaymentResultPending,
		CreatedAt:   c.clock.Now(),
	}
	if err := c.attempts.Create(ctx, attempt); err != nil {
		return Result{}, fmt.Errorf("create payment attempt: %w", err)
	}

	chargeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	result, err := c.gateway.Charge(chargeCtx, payment.ChargeInput{
		AttemptID:   attempt.ID,
		OrderID:     o.ID,
		AmountCents: attempt.AmountCents,
		Currency:    o.Currency,
		Method:      attempt.Method,
	})
	if err != nil {
		// A timed-out attempt is cancelled so a later gateway resolution
		// cannot pay an order the consumer has moved on from.
		c.attempts.SetResult(ctx, attempt.ID, domain.PaymentResultFailed)
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Printf("checkout: attempt=%s order=%s timed out", attempt.ID, o.ID)
			return Result{Order: o}, domain.ErrPaymentTimeout
		}
		return Result{Order: o}, fmt.Errorf("charge: %w", err)
	}

	switch result {
	case domain.PaymentResultSucceeded:
		return c.applySuccess(ctx, o, attempt, in)
	case domain.PaymentResultPending:
		// The gateway will report through Resolve.
		return Result{Order: o, Attempt: attempt}, nil
	default:
		c.attempts.SetResult(ctx, attempt.ID, domain.PaymentResultFailed)
		c.logger.Printf("checkout: attempt=%s order=%s declined", attempt.ID, o.ID)
		return Result{Order: o}, domain.ErrPaymentFailed
	}
}

func (c *Coordinator) applySuccess(ctx context.Context, o *domain.Order, attempt domain.PaymentAttempt, in SubmitInput) (Result, error) {
	updated, err := c.orders.MarkPaid(ctx, o.ID, "", attempt.ID)
	if err != nil {
		c.attempts.SetResult(ctx, attempt.ID, domain.PaymentResultFailed)
		if errors.Is(err, domain.ErrInvalidTransition) {
			return Result{Order: o}, domain.ErrOrderAlreadyPaid
		}
		return Result{Order: o}, err
	}
	if err := c.attempts.SetResult(ctx, attempt.ID, domain.PaymentResultSucceeded); err != nil {
		c.logger.Printf("checkout: record attempt result attempt=%s error=%v", attempt.ID, err)
	}
	c.carts.Clear(in.ConsumerID, in.BusinessID)
	attempt.Result = domain.PaymentResultSucceeded
	c.logger.Printf("checkout: paid order=%s attempt=%s amount=%d", o.ID, attempt.ID, attempt.AmountCents)
	return Result{Order: updated, Attempt: attempt}, nil
}

// supersedeOpenAttempt enforces at most one non-failed attempt per
// order: a stale pending attempt is cancelled before a new one starts,
// and a succeeded one means the order is already paid.
func (c *Coordinator) supersedeOpenAttempt(ctx context.Context, orderID string) error {
	open, err := c.attempts.GetOpenByOrder(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if open.Result == domain.PaymentResultSucceeded {
		return domain.ErrOrderAlreadyPaid
	}
	return c.attempts.SetResult(ctx, open.ID, domain.PaymentResultFailed)
}

// Resolve is the asynchronous gateway callback. The attempt is checked
// against the order's identity, amount, and current status before
// anything is applied, so a resolution for an abandoned or superseded
// attempt can never mark a stale order paid.
func (c *Coordinator) Resolve(ctx context.Context, attemptID, orderID string, result domain.PaymentResult) (*domain.Order, error) {
	attempt, err := c.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.OrderID != orderID {
		return nil, domain.ErrNotFound
	}
	if attempt.Result != domain.PaymentResultPending {
		if attempt.Result == domain.PaymentResultSucceeded {
			return nil, domain.ErrOrderAlreadyPaid
		}
		return nil, domain.ErrPaymentFailed
	}

	if result != domain.PaymentResultSucceeded {
		c.attempts.SetResult(ctx, attemptID, domain.PaymentResultFailed)
		o, getErr := c.orders.Get(ctx, orderID)
		if getErr != nil {
			return nil, getErr
		}
		return o, domain.ErrPaymentFailed
	}

	o, err := c.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if attempt.AmountCents != o.TotalCents || !ordersvc.CanTransition(o.Status, domain.OrderStatusPaid) {
		c.attempts.SetResult(ctx, attemptID, domain.PaymentResultFailed)
		if o.Status == domain.OrderStatusPaid || o.Status == domain.OrderStatusCompleted {
			return nil, domain.ErrOrderAlreadyPaid
		}
		return nil, domain.ErrInvalidTransition
	}

	updated, err := c.orders.MarkPaid(ctx, orderID, "", attemptID)
	if err != nil {
		c.attempts.SetResult(ctx, attemptID, domain.PaymentResultFailed)
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, domain.ErrOrderAlreadyPaid
		}
		return nil, err
	}
	if err := c.attempts.SetResult(ctx, attemptID, domain.PaymentResultSucceeded); err != nil {
		c.logger.Printf("checkout: record attempt result attempt=%s error=%v", attemptID, err)
	}
	c.carts.Clear(updated.ConsumerID, updated.BusinessID)
	c.logger.Printf("checkout: resolved order=%s attempt=%s result=%s", orderID, attemptID, result)
	return updated, nil
}
