package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusConfirmed   OrderStatus = "confirmed"
	OrderStatusPaymentSent OrderStatus = "payment_sent"
	OrderStatusPaid        OrderStatus = "paid"
	OrderStatusCompleted   OrderStatus = "completed"
	OrderStatusCancelled   OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// LineItem is a (name, price) pair snapshotted onto an order at
// checkout time. Later catalog price changes never touch it.
type LineItem struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// StatusChange is one entry of an order's audit history.
type StatusChange struct {
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	Note       string      `json:"note,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Order is created by checkout and mutated only through validated
// status transitions. TotalCents always equals the sum of Lines and is
// fixed at creation. Orders are never deleted; terminal states are kept
// for history.
type Order struct {
	ID         string         `json:"id"`
	BusinessID string         `json:"businessId"`
	ConsumerID string         `json:"consumerId"`
	Lines      []LineItem     `json:"lineItems"`
	TotalCents int64          `json:"totalCents"`
	Currency   string         `json:"currency"`
	Status     OrderStatus    `json:"status"`
	Notes      []string       `json:"notes,omitempty"`
	PaymentRef string         `json:"paymentRef,omitempty"`
	History    []StatusChange `json:"-"`
	CreatedAt  time.Time      `json:"createdAt"`
}
