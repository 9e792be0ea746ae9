package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount  = errors.New("payment amount must be positive")
	ErrAmountTooLarge = errors.New("payment amount exceeds configured ceiling")
)

// Status defines payment attempt states
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// FailureCode identifies why a charge was declined or failed to go through.
type FailureCode string

const (
	FailureCodeInvalidCard        FailureCode = "INVALID_CARD"
	FailureCodeInsufficientFunds  FailureCode = "INSUFFICIENT_FUNDS"
	FailureCodeGatewayTimeout     FailureCode = "GATEWAY_TIMEOUT"
	FailureCodeServiceUnavailable FailureCode = "SERVICE_UNAVAILABLE"
	FailureCodeRateLimited        FailureCode = "RATE_LIMITED"
	FailureCodeNetworkError       FailureCode = "NETWORK_ERROR"
	FailureCodeGatewayExhausted   FailureCode = "GATEWAY_UNAVAILABLE"
	FailureCodeUnknown            FailureCode = "UNKNOWN"
)

// Retryable reports whether a failure classification allows another attempt.
// The retry loop is a pure function of this answer: terminal declines are
// never resubmitted, transient transport failures always may be.
func (c FailureCode) Retryable() bool {
	switch c {
	case FailureCodeGatewayTimeout, FailureCodeServiceUnavailable, FailureCodeRateLimited, FailureCodeNetworkError:
		return true
	}
	return false
}

// Attempt records one logical charge. The transaction ID is stable across
// retries of the same charge; only AttemptNumber advances.
type Attempt struct {
	TransactionID    uuid.UUID `json:"transaction_id"`
	AttemptNumber    int       `json:"attempt_number"`
	Amount           int64     `json:"amount"` // Stored in cents/minor units
	Status           Status    `json:"status"`
	GatewayReference string    `json:"gateway_reference,omitempty"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// Error is a classified charge failure.
type Error struct {
	Code          FailureCode
	TransactionID uuid.UUID
	Message       string
}

func (e *Error) Error() string {
	return "payment failed (" + string(e.Code) + "): " + e.Message
}

// Retryable reports whether the failure may be retried.
func (e *Error) Retryable() bool {
	return e.Code.Retryable()
}

// Refund records the outcome of refunding a prior charge.
type Refund struct {
	RefundID              uuid.UUID `json:"refund_id"`
	OriginalTransactionID uuid.UUID `json:"original_transaction_id"`
	Amount                int64     `json:"amount"` // Stored in cents/minor units
	Reason                string    `json:"reason"`
	ProcessedAt           time.Time `json:"processed_at"`
}
