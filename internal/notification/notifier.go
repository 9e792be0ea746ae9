// Package notification delivers best-effort order confirmations. Delivery is
// never allowed to fail a checkout: the orchestrator swallows errors from
// here and surfaces them only through the audit sink.
package notification

import (
	"context"

	"github.com/commerce-order-fulfillment/internal/domain/order"
)

// OrderSummary is the customer-facing digest of a completed checkout.
type OrderSummary struct {
	OrderID              string           `json:"order_id"`
	Items                []order.LineItem `json:"items"`
	Subtotal             int64            `json:"subtotal"`
	TaxAmount            int64            `json:"tax_amount"`
	TotalAmount          int64            `json:"total_amount"`
	PaymentTransactionID string           `json:"payment_transaction_id"`
}

// Notifier announces a confirmed order to the customer.
type Notifier interface {
	OrderConfirmed(ctx context.Context, email string, summary OrderSummary) error
}
