package payment

import (
	"context"

	"callorder/internal/domain"
)

// ChargeInput identifies one attempt to settle an order's total. The
// amount comes from the order itself, never from the consumer's client.
type ChargeInput struct {
	AttemptID   string
	OrderID     string
	AmountCents int64
	Currency    string
	Method      domain.PaymentMethod
}

// Gateway settles payment attempts. Charge blocks until the gateway
// resolves or ctx expires; callers bound the wait with a deadline and
// map expiry to domain.ErrPaymentTimeout. Gateways that only resolve
// out-of-band return PaymentResultPending and report through the
// resolution endpoint instead.
type Gateway interface {
	Charge(ctx context.Context, in ChargeInput) (domain.PaymentResult, error)
}
