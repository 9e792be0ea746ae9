package shared

// ErrorKind classifies checkout failures so callers can decide how to react
// without matching on concrete error types.
type ErrorKind string

const (
	// ErrorKindValidation means the request was rejected before any side
	// effect took place. Nothing needs to be compensated.
	ErrorKindValidation ErrorKind = "VALIDATION"
	// ErrorKindResource means a stock reservation failed mid-checkout.
	ErrorKindResource ErrorKind = "RESOURCE"
	// ErrorKindPayment covers terminal card failures and gateway exhaustion.
	ErrorKindPayment ErrorKind = "PAYMENT"
	// ErrorKindCommit means payment succeeded but the order could not be
	// recorded. This is the dangling-charge case and requires manual
	// reconciliation, never a silent fresh charge.
	ErrorKindCommit ErrorKind = "COMMIT"
)

// CheckoutError tags an underlying failure with its saga classification.
type CheckoutError struct {
	Kind ErrorKind
	Err  error
}

func (e *CheckoutError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// NewCheckoutError wraps err with the given saga classification.
func NewCheckoutError(kind ErrorKind, err error) *CheckoutError {
	return &CheckoutError{Kind: kind, Err: err}
}
