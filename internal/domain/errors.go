package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrItemUnavailable indicates an attempt to select a catalog item
	// whose availability flag is off.
	ErrItemUnavailable = errors.New("item unavailable")

	// ErrSessionAlreadyActive indicates a call session already exists for
	// the consumer-business pair.
	ErrSessionAlreadyActive = errors.New("call session already active")

	// ErrEmptyCart indicates a checkout was submitted with no selections.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderAlreadyPaid indicates a payment was submitted for an order
	// that has already been paid.
	ErrOrderAlreadyPaid = errors.New("order already paid")

	// ErrInvalidTransition indicates an order status change that does not
	// follow an allowed edge. The order is left unchanged.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrPaymentTimeout indicates the gateway did not resolve the attempt
	// within the configured window. The order stays where it was.
	ErrPaymentTimeout = errors.New("payment timed out")

	// ErrPaymentFailed indicates the gateway declined the attempt.
	ErrPaymentFailed = errors.New("payment failed")
)
