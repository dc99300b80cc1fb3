package order

import (
	"context"

	"callorder/internal/domain"
)

// ApplyTransitionInput records one validated status change. The write
// is guarded by From: if the stored status no longer matches, the
// implementation must return domain.ErrInvalidTransition and leave the
// order untouched.
type ApplyTransitionInput struct {
	OrderID    string
	Change     domain.StatusChange
	PaymentRef string
}

type Repository interface {
	Create(ctx context.Context, o domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByBusiness(ctx context.Context, businessID string) ([]domain.Order, error)
	ListByConsumer(ctx context.Context, consumerID string) ([]domain.Order, error)
	History(ctx context.Context, orderID string) ([]domain.StatusChange, error)
	ApplyTransition(ctx context.Context, in ApplyTransitionInput) error
}
