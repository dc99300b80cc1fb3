package cart

import (
	"context"
	"sync"

	"callorder/internal/domain"
)

type catalogRepo interface {
	GetItem(ctx context.Context, businessID, itemID string) (*domain.CatalogItem, error)
}

// Service holds one in-memory cart per (consumer, business) pair.
// Carts have set semantics: an item is selected or it is not. Nothing
// here persists; a cart dies with Clear or with the process.
type Service struct {
	catalog catalogRepo

	mu    sync.Mutex
	carts map[string]*state
}

type state struct {
	order []string
	items map[string]domain.CatalogItem
}

// Snapshot is a read-only view of a cart, in selection order.
type Snapshot struct {
	Items      []domain.CatalogItem `json:"items"`
	TotalCents int64                `json:"totalCents"`
	Currency   string               `json:"currency,omitempty"`
}

func New(catalog catalogRepo) *Service {
	return &Service{catalog: catalog, carts: make(map[string]*state)}
}

func cartKey(consumerID, businessID string) string {
	return consumerID + "|" + businessID
}

// Toggle flips the selection state of an item. Selecting an unavailable
// item fails with domain.ErrItemUnavailable; deselecting is always
// allowed, even if the item went unavailable after it was added.
func (s *Service) Toggle(ctx context.Context, consumerID, businessID, itemID string) (Snapshot, error) {
	key := cartKey(consumerID, businessID)

	s.mu.Lock()
	st, ok := s.carts[key]
	if ok {
		if _, selected := st.items[itemID]; selected {
			delete(st.items, itemID)
			for i, id := range st.order {
				if id == itemID {
					st.order = append(st.order[:i], st.order[i+1:]...)
					break
				}
			}
			snap := st.snapshot()
			s.mu.Unlock()
			return snap, nil
		}
	}
	s.mu.Unlock()

	// Availability is checked against the live catalog at selection time.
	item, err := s.catalog.GetItem(ctx, businessID, itemID)
	if err != nil {
		return Snapshot{}, err
	}
	if !item.Available {
		return Snapshot{}, domain.ErrItemUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok = s.carts[key]
	if !ok {
		st = &state{items: make(map[string]domain.CatalogItem)}
		s.carts[key] = st
	}
	if _, selected := st.items[itemID]; !selected {
		st.items[itemID] = *item
		st.order = append(st.order, itemID)
	}
	return st.snapshot(), nil
}

// Get returns the current cart contents, empty when nothing is selected.
func (s *Service) Get(consumerID, businessID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.carts[cartKey(consumerID, businessID)]
	if !ok {
		return Snapshot{Items: []domain.CatalogItem{}}
	}
	return st.snapshot()
}

// Total recomputes the sum of selected prices. Never cached across a
// mutation; an empty cart totals zero.
func (s *Service) Total(consumerID, businessID string) int64 {
	return s.Get(consumerID, businessID).TotalCents
}

// Clear drops the cart, used after a successful checkout or when the
// surrounding session is abandoned.
func (s *Service) Clear(consumerID, businessID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartKey(consumerID, businessID))
}

func (st *state) snapshot() Snapshot {
	snap := Snapshot{Items: make([]domain.CatalogItem, 0, len(st.order))}
	for _, id := range st.order {
		item := st.items[id]
		snap.Items = append(snap.Items, item)
		snap.TotalCents += item.PriceCents
		if snap.Currency == "" {
			snap.Currency = item.Currency
		}
	}
	return snap
}
