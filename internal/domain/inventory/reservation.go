package inventory

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus defines the lifecycle of a stock reservation
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusReleased  ReservationStatus = "RELEASED"
)

// Reservation is a time-bounded hold on stock tied to one order line item.
// Reservations are owned exclusively by the ledger: they are created by
// Reserve and only ever mutated by Confirm, Release or the expiry sweep.
// They are retained for audit until process restart.
type Reservation struct {
	ID         uuid.UUID         `json:"reservation_id"`
	ProductID  string            `json:"product_id"`
	Quantity   int               `json:"quantity"`
	OrderID    string            `json:"order_id"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
	ResolvedAt time.Time         `json:"resolved_at,omitempty"` // confirm or release time
}

// StockLevel is a point-in-time view of one product's stock counters.
// Available = Total - Reserved and is never negative.
type StockLevel struct {
	ProductID string `json:"product_id"`
	Total     int    `json:"total_quantity"`
	Reserved  int    `json:"reserved_quantity"`
}

// Available returns the quantity that can still be reserved.
func (s StockLevel) Available() int {
	return s.Total - s.Reserved
}
