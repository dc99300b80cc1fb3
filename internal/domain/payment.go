package domain

import "time"

// PaymentMethod selects how an attempt is settled.
type PaymentMethod string

const (
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodWallet      PaymentMethod = "wallet"
)

// ValidPaymentMethod reports whether m is one of the supported methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodMobileMoney, PaymentMethodCard, PaymentMethodWallet:
		return true
	}
	return false
}

// PaymentResult is the resolution state of an attempt.
type PaymentResult string

const (
	PaymentResultPending   PaymentResult = "pending"
	PaymentResultSucceeded PaymentResult = "succeeded"
	PaymentResultFailed    PaymentResult = "failed"
)

// PaymentAttempt is one asynchronous try at settling an order's total.
// AmountCents always equals the order's total at submission time.
type PaymentAttempt struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"orderId"`
	AmountCents int64         `json:"amountCents"`
	Method      PaymentMethod `json:"method"`
	Result      PaymentResult `json:"result"`
	CreatedAt   time.Time     `json:"createdAt"`
}
