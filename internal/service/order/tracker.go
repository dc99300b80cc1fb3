package order

import (
	"context"
	"io"
	"log"
	"sync"

	"callorder/internal/clock"
	"callorder/internal/domain"
	orderrepo "callorder/internal/repository/order"
	"github.com/google/uuid"
)

// transitions is the full edge set of the order lifecycle. Two paths
// converge at paid: the self-checkout bypass (pending -> paid) and the
// agent-mediated chain (pending -> confirmed -> payment_sent -> paid).
// Cancellation is legal from any state before payment.
var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:     {domain.OrderStatusConfirmed, domain.OrderStatusPaid, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed:   {domain.OrderStatusPaymentSent, domain.OrderStatusCancelled},
	domain.OrderStatusPaymentSent: {domain.OrderStatusPaid, domain.OrderStatusCancelled},
	domain.OrderStatusPaid:        {domain.OrderStatusCompleted},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to domain.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Tracker is the single writer of order status. Every transition is
// atomic under a per-order lock: read, validate against the edge set,
// write, append history. Concurrent attempts on the same order
// serialize; the loser fails against the winner's state. Orders never
// contend with each other.
type Tracker struct {
	repo   orderrepo.Repository
	clock  clock.Clock
	logger *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTracker(repo orderrepo.Repository, clk clock.Clock, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Tracker{
		repo:   repo,
		clock:  clk,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (t *Tracker) orderLock(orderID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[orderID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[orderID] = l
	}
	return l
}

// CreateInput describes a new order. Lines are already snapshotted by
// the caller; the total is derived here and never changes afterwards.
type CreateInput struct {
	BusinessID string
	ConsumerID string
	Lines      []domain.LineItem
	Currency   string
}

// Create stores a new order in pending.
func (t *Tracker) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	var total int64
	for _, line := range in.Lines {
		total += line.PriceCents
	}
	o := domain.Order{
		ID:         uuid.NewString(),
		BusinessID: in.BusinessID,
		ConsumerID: in.ConsumerID,
		Lines:      append([]domain.LineItem(nil), in.Lines...),
		TotalCents: total,
		Currency:   in.Currency,
		Status:     domain.OrderStatusPending,
		CreatedAt:  t.clock.Now(),
	}
	if err := t.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	t.logger.Printf("order: created id=%s business=%s total=%d", o.ID, o.BusinessID, o.TotalCents)
	return &o, nil
}

type transitionOpts struct {
	note       string
	paymentRef string
}

func (t *Tracker) transition(ctx context.Context, orderID string, to domain.OrderStatus, opts transitionOpts) (*domain.Order, error) {
	l := t.orderLock(orderID)
	l.Lock()
	defer l.Unlock()

	current, err := t.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, to) {
		return nil, domain.ErrInvalidTransition
	}

	change := domain.StatusChange{
		From:       current.Status,
		To:         to,
		Note:       opts.note,
		OccurredAt: t.clock.Now(),
	}
	if err := t.repo.ApplyTransition(ctx, orderrepo.ApplyTransitionInput{
		OrderID:    orderID,
		Change:     change,
		PaymentRef: opts.paymentRef,
	}); err != nil {
		return nil, err
	}

	t.logger.Printf("order: transition id=%s %s -> %s", orderID, change.From, change.To)
	return t.repo.GetByID(ctx, orderID)
}

// Confirm moves pending -> confirmed (agent confirms by phone).
func (t *Tracker) Confirm(ctx context.Context, orderID, note string) (*domain.Order, error) {
	return t.transition(ctx, orderID, domain.OrderStatusConfirmed, transitionOpts{note: note})
}

// RequestPayment moves confirmed -> payment_sent.
func (t *Tracker) RequestPayment(ctx context.Context, orderID, note string) (*domain.Order, error) {
	return t.transition(ctx, orderID, domain.OrderStatusPaymentSent, transitionOpts{note: note})
}

// MarkPaid moves the order to paid, from pending (self-checkout) or
// payment_sent (agent-mediated). paymentRef links the settled attempt.
func (t *Tracker) MarkPaid(ctx context.Context, orderID, note, paymentRef string) (*domain.Order, error) {
	return t.transition(ctx, orderID, domain.OrderStatusPaid, transitionOpts{note: note, paymentRef: paymentRef})
}

// Complete moves paid -> completed.
func (t *Tracker) Complete(ctx context.Context, orderID, note string) (*domain.Order, error) {
	return t.transition(ctx, orderID, domain.OrderStatusCompleted, transitionOpts{note: note})
}

// Cancel moves a not-yet-paid order to cancelled.
func (t *Tracker) Cancel(ctx context.Context, orderID, note string) (*domain.Order, error) {
	return t.transition(ctx, orderID, domain.OrderStatusCancelled, transitionOpts{note: note})
}

// Get returns a snapshot of the order.
func (t *Tracker) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return t.repo.GetByID(ctx, orderID)
}

// History returns the order's transition log, oldest first.
func (t *Tracker) History(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	return t.repo.History(ctx, orderID)
}

func (t *Tracker) ListByBusiness(ctx context.Context, businessID string) ([]domain.Order, error) {
	return t.repo.ListByBusiness(ctx, businessID)
}

func (t *Tracker) ListByConsumer(ctx context.Context, consumerID string) ([]domain.Order, error) {
	return t.repo.ListByConsumer(ctx, consumerID)
}
