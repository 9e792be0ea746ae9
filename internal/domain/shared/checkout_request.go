package shared

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutItem is one requested order line before prices are snapshotted.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Address holds a shipping address as supplied by the caller.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// CardDetails carries the card fields forwarded to the payment gateway.
// The core never persists these.
type CardDetails struct {
	Number      string `json:"card_number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
	HolderName  string `json:"cardholder_name,omitempty"`
}

// CheckoutRequest defines a Kafka message for checkout processing
type CheckoutRequest struct {
	RequestID       uuid.UUID      `json:"request_id"`
	UserID          uuid.UUID      `json:"user_id"`
	Items           []CheckoutItem `json:"items"`
	ShippingAddress Address        `json:"shipping_address"`
	Card            CardDetails    `json:"card"`
	Email           string         `json:"email"`
	CorrelationID   string         `json:"correlation_id"`
	Timestamp       time.Time      `json:"timestamp"`
}
