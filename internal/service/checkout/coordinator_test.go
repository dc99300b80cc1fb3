package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"callorder/internal/clock"
	"callorder/internal/domain"
	"callorder/internal/payment"
	orderrepo "callorder/internal/repository/order"
	paymentrepo "callorder/internal/repository/payment"
	cartsvc "callorder/internal/service/cart"
	ordersvc "callorder/internal/service/order"
)

type stubCatalog struct {
	items map[string]domain.CatalogItem
}

func (s *stubCatalog) GetItem(_ context.Context, _, itemID string) (*domain.CatalogItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

type fixture struct {
	carts    *cartsvc.Service
	tracker  *ordersvc.Tracker
	attempts paymentrepo.Repository
	gateway  *payment.SimGateway
	coord    *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := &stubCatalog{items: map[string]domain.CatalogItem{
		"a": {ID: "a", Name: "Margherita Pizza", PriceCents: 250, Currency: "MZN", Available: true},
		"b": {ID: "b", Name: "Garlic Bread", PriceCents: 80, Currency: "MZN", Available: true},
	}}
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	carts := cartsvc.New(catalog)
	tracker := ordersvc.NewTracker(orderrepo.NewMemory(), clk, nil)
	attempts := paymentrepo.NewMemory()
	gateway := payment.NewSim(0, nil)
	coord := NewCoordinator(carts, tracker, attempts, gateway, clk, time.Second, nil)
	return &fixture{carts: carts, tracker: tracker, attempts: attempts, gateway: gateway, coord: coord}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.carts.Toggle(ctx, "u1", "b1", "a"); err != nil {
		t.Fatalf("toggle a: %v", err)
	}
	if _, err := f.carts.Toggle(ctx, "u1", "b1", "b"); err != nil {
		t.Fatalf("toggle b: %v", err)
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.Submit(context.Background(), SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodMobileMoney,
	})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	orders, _ := f.tracker.ListByConsumer(context.Background(), "u1")
	if len(orders) != 0 {
		t.Fatalf("empty cart must never create an order, got %d", len(orders))
	}
}

func TestSelfCheckoutHappyPath(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	res, err := f.coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodMobileMoney,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Order.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", res.Order.Status)
	}
	if res.Order.TotalCents != 330 {
		t.Fatalf("expected total 330, got %d", res.Order.TotalCents)
	}
	if res.Attempt.Result != domain.PaymentResultSucceeded {
		t.Fatalf("expected succeeded attempt, got %s", res.Attempt.Result)
	}
	if res.Attempt.AmountCents != 330 {
		t.Fatalf("attempt must charge the order total, got %d", res.Attempt.AmountCents)
	}
	if total := f.carts.Total("u1", "b1"); total != 0 {
		t.Fatalf("cart must be cleared on success, total=%d", total)
	}

	history, _ := f.tracker.History(ctx, res.Order.ID)
	if len(history) != 1 || history[0].From != domain.OrderStatusPending || history[0].To != domain.OrderStatusPaid {
		t.Fatalf("expected single pending->paid entry, got %+v", history)
	}
}

func TestOrderTotalSurvivesCatalogPriceChange(t *testing.T) {
	f := newFixture(t)
	catalog := &stubCatalog{items: map[string]domain.CatalogItem{
		"a": {ID: "a", Name: "Margherita Pizza", PriceCents: 250, Currency: "MZN", Available: true},
	}}
	f.carts = cartsvc.New(catalog)
	f.coord = NewCoordinator(f.carts, f.tracker, f.attempts, f.gateway, clock.NewFixed(time.Now()), time.Second, nil)
	ctx := context.Background()

	if _, err := f.carts.Toggle(ctx, "u1", "b1", "a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	res, err := f.coord.Submit(ctx, SubmitInput{ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodCard})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	item := catalog.items["a"]
	item.PriceCents = 999
	catalog.items["a"] = item

	got, _ := f.tracker.Get(ctx, res.Order.ID)
	if got.TotalCents != 250 {
		t.Fatalf("order total changed with the catalog: %d", got.TotalCents)
	}
}

func TestDeclinedPaymentKeepsOrderAndCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	f.gateway.Decide = func(payment.ChargeInput) domain.PaymentResult {
		return domain.PaymentResultFailed
	}
	res, err := f.coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodCard,
	})
	if !errors.Is(err, domain.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
	if res.Order == nil || res.Order.ID == "" {
		t.Fatal("failed submit should still report the created order")
	}

	got, _ := f.tracker.Get(ctx, res.Order.ID)
	if got.Status != domain.OrderStatusPending {
		t.Fatalf("order must stay pending after decline, got %s", got.Status)
	}
	if total := f.carts.Total("u1", "b1"); total != 330 {
		t.Fatalf("cart must be kept for retry, total=%d", total)
	}

	// retry against the same order succeeds
	f.gateway.Decide = nil
	res2, err := f.coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodCard, OrderID: res.Order.ID,
	})
	if err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if res2.Order.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid after retry, got %s", res2.Order.Status)
	}
}

func TestSubmitAlreadyPaidOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	res, err := f.coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodWallet,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err = f.coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodWallet, OrderID: res.Order.ID,
	})
	if !errors.Is(err, domain.ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
}

func TestSettleAgentMediatedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.tracker.Create(ctx, ordersvc.CreateInput{
		BusinessID: "b1", ConsumerID: "u1",
		Lines:    []domain.LineItem{{Name: "Pepperoni Pizza", PriceCents: 280}},
		Currency: "MZN",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.tracker.Confirm(ctx, o.ID, ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// payment not requested yet: consumer cannot settle a confirmed order
	_, err = f.coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodMobileMoney, OrderID: o.ID,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := f.tracker.RequestPayment(ctx, o.ID, ""); err != nil {
		t.Fatalf("request payment: %v", err)
	}
	res, err := f.coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodMobileMoney, OrderID: o.ID,
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if res.Order.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", res.Order.Status)
	}
}

func TestSubmitTimeoutCancelsAttempt(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	slow := payment.NewSim(200*time.Millisecond, nil)
	coord := NewCoordinator(f.carts, f.tracker, f.attempts, slow, clock.NewFixed(time.Now()), 10*time.Millisecond, nil)

	res, err := coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodCard,
	})
	if !errors.Is(err, domain.ErrPaymentTimeout) {
		t.Fatalf("expected ErrPaymentTimeout, got %v", err)
	}

	got, _ := f.tracker.Get(ctx, res.Order.ID)
	if got.Status != domain.OrderStatusPending {
		t.Fatalf("order must stay pending after timeout, got %s", got.Status)
	}
	if total := f.carts.Total("u1", "b1"); total != 330 {
		t.Fatalf("cart must be kept after timeout, total=%d", total)
	}

	// the attempt was cancelled: a late success resolution must not pay the order
	attempt, err := f.attempts.GetOpenByOrder(ctx, res.Order.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no open attempt after timeout, got %+v err=%v", attempt, err)
	}
}

type pendingGateway struct{}

func (pendingGateway) Charge(context.Context, payment.ChargeInput) (domain.PaymentResult, error) {
	return domain.PaymentResultPending, nil
}

func TestResolveAppliesOutOfBandSuccess(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	coord := NewCoordinator(f.carts, f.tracker, f.attempts, pendingGateway{}, clock.NewFixed(time.Now()), time.Second, nil)
	res, err := coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodMobileMoney,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Attempt.Result != domain.PaymentResultPending {
		t.Fatalf("expected pending attempt, got %s", res.Attempt.Result)
	}

	updated, err := coord.Resolve(ctx, res.Attempt.ID, res.Order.ID, domain.PaymentResultSucceeded)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if updated.Status != domain.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", updated.Status)
	}
	if total := f.carts.Total("u1", "b1"); total != 0 {
		t.Fatalf("cart must be cleared on resolved success, total=%d", total)
	}

	// a duplicate resolution cannot pay twice
	if _, err := coord.Resolve(ctx, res.Attempt.ID, res.Order.ID, domain.PaymentResultSucceeded); !errors.Is(err, domain.ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
}

func TestResolveFailureLeavesOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	coord := NewCoordinator(f.carts, f.tracker, f.attempts, pendingGateway{}, clock.NewFixed(time.Now()), time.Second, nil)
	res, err := coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodMobileMoney,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	o, err := coord.Resolve(ctx, res.Attempt.ID, res.Order.ID, domain.PaymentResultFailed)
	if !errors.Is(err, domain.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
	if o.Status != domain.OrderStatusPending {
		t.Fatalf("order must stay pending, got %s", o.Status)
	}
	if total := f.carts.Total("u1", "b1"); total != 330 {
		t.Fatalf("cart must be kept, total=%d", total)
	}
}

func TestResolveWrongOrderIdentity(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	ctx := context.Background()

	coord := NewCoordinator(f.carts, f.tracker, f.attempts, pendingGateway{}, clock.NewFixed(time.Now()), time.Second, nil)
	res, err := coord.Submit(ctx, SubmitInput{
		ConsumerID: "u1", BusinessID: "b1", Method: domain.PaymentMethodMobileMoney,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := coord.Resolve(ctx, res.Attempt.ID, "some-other-order", domain.PaymentResultSucceeded); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for mismatched order, got %v", err)
	}
}
