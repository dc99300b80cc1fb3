package agent

import (
	"context"

	"callorder/internal/domain"
)

type orderTracker interface {
	Confirm(ctx context.Context, orderID, note string) (*domain.Order, error)
	RequestPayment(ctx context.Context, orderID, note string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID, note, paymentRef string) (*domain.Order, error)
	Complete(ctx context.Context, orderID, note string) (*domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
}

// Workflow is the agent-side driver over the order tracker, restricted
// to the agent-legal transitions. A rejected transition is not fatal:
// the agent gets the order's current true status back and may act on
// that instead.
type Workflow struct {
	orders orderTracker
}

func NewWorkflow(orders orderTracker) *Workflow {
	return &Workflow{orders: orders}
}

// Outcome pairs the order snapshot with the error, so a rejected
// transition still shows the agent where the order actually is.
type Outcome struct {
	Order *domain.Order
	Err   error
}

func (w *Workflow) do(ctx context.Context, orderID string, op func() (*domain.Order, error)) Outcome {
	o, err := op()
	if err != nil {
		// Surface the live status alongside the rejection.
		if current, getErr := w.orders.Get(ctx, orderID); getErr == nil {
			return Outcome{Order: current, Err: err}
		}
		return Outcome{Err: err}
	}
	return Outcome{Order: o}
}

// Confirm acknowledges a pending order after the agent reached the
// business by phone.
func (w *Workflow) Confirm(ctx context.Context, orderID, note string) Outcome {
	return w.do(ctx, orderID, func() (*domain.Order, error) {
		return w.orders.Confirm(ctx, orderID, note)
	})
}

// RequestPayment sends the consumer a payment request for a confirmed
// order.
func (w *Workflow) RequestPayment(ctx context.Context, orderID, note string) Outcome {
	return w.do(ctx, orderID, func() (*domain.Order, error) {
		return w.orders.RequestPayment(ctx, orderID, note)
	})
}

// MarkPaid records an out-of-band settlement the agent verified.
func (w *Workflow) MarkPaid(ctx context.Context, orderID, note string) Outcome {
	return w.do(ctx, orderID, func() (*domain.Order, error) {
		return w.orders.MarkPaid(ctx, orderID, note, "")
	})
}

// Complete marks fulfillment done.
func (w *Workflow) Complete(ctx context.Context, orderID, note string) Outcome {
	return w.do(ctx, orderID, func() (*domain.Order, error) {
		return w.orders.Complete(ctx, orderID, note)
	})
}
