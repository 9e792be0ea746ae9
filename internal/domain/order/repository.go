package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines order persistence operations.
//
// Append is the only way an order comes into existence and SetStatus is the
// only mutation afterwards. No state machine is enforced on transitions at
// this layer; the orchestrator is responsible for requesting valid ones.
type Repository interface {
	// Append validates the order, assigns a fresh ID, stamps creation time
	// and stores it with status PENDING. Returns the assigned ID.
	Append(ctx context.Context, o *Order) (uuid.UUID, error)

	// SetStatus updates the status of an existing order.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByUser returns up to limit orders for a user, newest first.
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Order, error)
}

// ErrOrderNotFound indicates a missing order
type ErrOrderNotFound struct {
	OrderID uuid.UUID
}

func (e ErrOrderNotFound) Error() string {
	return "order not found: " + e.OrderID.String()
}
