package payment

import (
	"context"

	"callorder/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, a domain.PaymentAttempt) error
	GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error)
	// GetOpenByOrder returns the order's pending or succeeded attempt,
	// domain.ErrNotFound when only failed attempts (or none) exist. An
	// order carries at most one such attempt.
	GetOpenByOrder(ctx context.Context, orderID string) (*domain.PaymentAttempt, error)
	SetResult(ctx context.Context, id string, result domain.PaymentResult) error
}
