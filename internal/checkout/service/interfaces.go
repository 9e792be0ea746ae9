package service

import (
	"context"

	"github.com/google/uuid"

	domainpayment "github.com/commerce-order-fulfillment/internal/domain/payment"
	"github.com/commerce-order-fulfillment/internal/domain/shared"
)

// CheckoutResult is what a successful checkout returns to the caller.
type CheckoutResult struct {
	OrderID              uuid.UUID `json:"order_id"`
	PaymentTransactionID uuid.UUID `json:"payment_transaction_id"`
	TotalAmount          int64     `json:"total_amount"` // Stored in cents/minor units
}

// CheckoutService drives the checkout saga. The caller receives exactly one
// of a result or a classified *shared.CheckoutError; never a partially
// completed order.
type CheckoutService interface {
	ProcessCheckout(ctx context.Context, request *shared.CheckoutRequest) (*CheckoutResult, error)

	// CancelOrder flips an existing order to cancelled.
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) error
}

// Charger submits one logical payment, retrying transient gateway failures
// internally. Implemented by the payment client.
type Charger interface {
	Charge(ctx context.Context, amount int64, card shared.CardDetails, orderRef string) (*domainpayment.Attempt, error)
}
