package payment

import (
	"context"
	"io"
	"log"
	"time"

	"callorder/internal/domain"
)

// SimGateway is the development gateway. It settles every attempt after
// a fixed latency, the way the sandbox credentials of the real provider
// behave. Decide can be set to force declines in tests.
type SimGateway struct {
	latency time.Duration
	logger  *log.Logger

	// Decide overrides the resolution per attempt. Nil means succeed.
	Decide func(in ChargeInput) domain.PaymentResult
}

func NewSim(latency time.Duration, logger *log.Logger) *SimGateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SimGateway{latency: latency, logger: logger}
}

func (g *SimGateway) Charge(ctx context.Context, in ChargeInput) (domain.PaymentResult, error) {
	if !domain.ValidPaymentMethod(in.Method) {
		return domain.PaymentResultFailed, domain.ErrPaymentFailed
	}

	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.PaymentResultPending, ctx.Err()
		case <-timer.C:
		}
	}

	result := domain.PaymentResultSucceeded
	if g.Decide != nil {
		result = g.Decide(in)
	}
	g.logger.Printf("payment: charge attempt=%s order=%s amount=%d method=%s result=%s",
		in.AttemptID, in.OrderID, in.AmountCents, in.Method, result)
	return result, nil
}
