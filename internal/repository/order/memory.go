package order

import (
	"context"
	"sort"
	"sync"

	"callorder/internal/domain"
)

// memoryRepo keeps orders in process memory. It backs tests and
// DB-less development runs.
type memoryRepo struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMemory() Repository {
	return &memoryRepo{orders: make(map[string]*domain.Order)}
}

func (r *memoryRepo) Create(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneOrder(o)
	r.orders[o.ID] = &stored
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneOrder(*o)
	return &out, nil
}

func (r *memoryRepo) ListByBusiness(_ context.Context, businessID string) ([]domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.BusinessID == businessID })
}

func (r *memoryRepo) ListByConsumer(_ context.Context, consumerID string) ([]domain.Order, error) {
	return r.list(func(o *domain.Order) bool { return o.ConsumerID == consumerID })
}

func (r *memoryRepo) list(match func(*domain.Order) bool) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Order
	for _, o := range r.orders {
		if match(o) {
			result = append(result, cloneOrder(*o))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryRepo) History(_ context.Context, orderID string) ([]domain.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	history := make([]domain.StatusChange, len(o.History))
	copy(history, o.History)
	return history, nil
}

func (r *memoryRepo) ApplyTransition(_ context.Context, in ApplyTransitionInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[in.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != in.Change.From {
		return domain.ErrInvalidTransition
	}
	o.Status = in.Change.To
	o.History = append(o.History, in.Change)
	if in.Change.Note != "" {
		o.Notes = append(o.Notes, in.Change.Note)
	}
	if in.PaymentRef != "" {
		o.PaymentRef = in.PaymentRef
	}
	return nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Lines = append([]domain.LineItem(nil), o.Lines...)
	o.Notes = append([]string(nil), o.Notes...)
	o.History = append([]domain.StatusChange(nil), o.History...)
	return o
}
