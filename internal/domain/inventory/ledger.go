package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrQuantityTooBig  = errors.New("quantity exceeds per-reservation limit")
)

// ErrUnknownProduct indicates the product is not tracked by the ledger
type ErrUnknownProduct struct {
	ProductID string
}

func (e ErrUnknownProduct) Error() string {
	return "unknown product: " + e.ProductID
}

// ErrInsufficientStock indicates available stock is below the requested quantity
type ErrInsufficientStock struct {
	ProductID string
	Requested int
	Available int
}

func (e ErrInsufficientStock) Error() string {
	return "insufficient stock for product " + e.ProductID
}

// ErrReservationNotFound indicates a missing reservation
type ErrReservationNotFound struct {
	ReservationID uuid.UUID
}

func (e ErrReservationNotFound) Error() string {
	return "reservation not found: " + e.ReservationID.String()
}

// ErrReservationFinalized indicates the reservation already left the active state
type ErrReservationFinalized struct {
	ReservationID uuid.UUID
	Status        ReservationStatus
}

func (e ErrReservationFinalized) Error() string {
	return "reservation " + e.ReservationID.String() + " already " + string(e.Status)
}

// Ledger tracks per-product stock and time-bounded reservations.
//
// All mutations to stock counters and reservation state happen under the
// ledger's mutual exclusion, so the availability check inside Reserve and
// the subsequent decrement are atomic relative to concurrent callers.
type Ledger interface {
	// Reserve atomically decrements available stock and creates an active
	// reservation that expires automatically if never confirmed.
	Reserve(ctx context.Context, productID string, quantity int, orderID string) (*Reservation, error)

	// Confirm transitions an active reservation to confirmed, making it
	// immune to expiry. The reserved stock stays decremented.
	Confirm(ctx context.Context, reservationID uuid.UUID) error

	// Release returns an active reservation's quantity to stock. Releasing
	// a reservation that was already released or confirmed is a no-op:
	// expiry races Confirm and Release here, and the loser must be safe.
	Release(ctx context.Context, reservationID uuid.UUID) (bool, error)

	// ReleaseQuantity returns stock without a reservation, for manual
	// corrections outside the checkout flow.
	ReleaseQuantity(ctx context.Context, productID string, quantity int, orderID string) error

	// CheckAvailability reports whether quantity units can currently be
	// reserved, along with the available count.
	CheckAvailability(ctx context.Context, productID string, quantity int) (bool, int, error)

	// Stock returns the current counters for a product.
	Stock(ctx context.Context, productID string) (StockLevel, error)

	// LowStock lists products whose available count is at or below threshold.
	LowStock(ctx context.Context, threshold int) ([]StockLevel, error)
}
