package payment

import (
	"context"
	"sync"

	"callorder/internal/domain"
)

type memoryRepo struct {
	mu       sync.RWMutex
	attempts map[string]*domain.PaymentAttempt
}

func NewMemory() Repository {
	return &memoryRepo{attempts: make(map[string]*domain.PaymentAttempt)}
}

func (r *memoryRepo) Create(_ context.Context, a domain.PaymentAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := a
	r.attempts[a.ID] = &stored
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.PaymentAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (r *memoryRepo) GetOpenByOrder(_ context.Context, orderID string) (*domain.PaymentAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.attempts {
		if a.OrderID == orderID && a.Result != domain.PaymentResultFailed {
			out := *a
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) SetResult(_ context.Context, id string, result domain.PaymentResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Result = result
	return nil
}
