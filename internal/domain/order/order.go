package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNoItems          = errors.New("order must contain at least one item")
	ErrInvalidQuantity  = errors.New("item quantity must be positive")
	ErrNegativePrice    = errors.New("unit price cannot be negative")
	ErrInvalidTotal     = errors.New("total amount must be positive")
	ErrMissingUser      = errors.New("order must reference a user")
	ErrMissingPaymentID = errors.New("order must reference a payment transaction")
)

// Status defines order processing states
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// LineItem is an immutable snapshot of one purchased product. Prices are
// captured at checkout time so later catalog changes do not alter the order.
type LineItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"` // Stored in cents/minor units
}

// Total returns the line total in cents.
func (li LineItem) Total() int64 {
	return int64(li.Quantity) * li.UnitPrice
}

// Order represents a finalized customer purchase. After creation the only
// permitted mutation is a status transition.
type Order struct {
	ID                   uuid.UUID  `json:"order_id"`
	UserID               uuid.UUID  `json:"user_id"`
	Items                []LineItem `json:"items"`
	Subtotal             int64      `json:"subtotal"`   // Stored in cents/minor units
	TaxAmount            int64      `json:"tax_amount"` // Stored in cents/minor units
	TotalAmount          int64      `json:"total_amount"`
	Status               Status     `json:"status"`
	PaymentTransactionID uuid.UUID  `json:"payment_transaction_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewOrder builds an order ready for Append, validating required fields.
// The repository assigns the ID and sets the initial PENDING status.
func NewOrder(userID uuid.UUID, items []LineItem, subtotal, taxAmount, totalAmount int64, paymentTransactionID uuid.UUID) (*Order, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.UnitPrice < 0 {
			return nil, ErrNegativePrice
		}
	}
	if totalAmount <= 0 {
		return nil, ErrInvalidTotal
	}
	if paymentTransactionID == uuid.Nil {
		return nil, ErrMissingPaymentID
	}

	return &Order{
		UserID:               userID,
		Items:                items,
		Subtotal:             subtotal,
		TaxAmount:            taxAmount,
		TotalAmount:          totalAmount,
		Status:               StatusPending,
		PaymentTransactionID: paymentTransactionID,
	}, nil
}
