// Package memory provides in-memory repository implementations used by the
// saga tests and the simulated wiring. They honor the same contracts as the
// persistent repositories.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/commerce-order-fulfillment/internal/domain/order"
)

// OrderRepository implements order.Repository on a mutex-guarded map.
type OrderRepository struct {
	logger *slog.Logger

	mu     sync.RWMutex
	orders map[uuid.UUID]*order.Order
	seq    []uuid.UUID // append order, for stable newest-first reads
}

// NewOrderRepository creates an empty in-memory order repository.
func NewOrderRepository(logger *slog.Logger) *OrderRepository {
	return &OrderRepository{
		logger: logger,
		orders: make(map[uuid.UUID]*order.Order),
	}
}

// Append validates required fields, assigns a fresh ID and stores the order
// with status PENDING.
func (r *OrderRepository) Append(_ context.Context, o *order.Order) (uuid.UUID, error) {
	if o.UserID == uuid.Nil {
		return uuid.Nil, order.ErrMissingUser
	}
	if len(o.Items) == 0 {
		return uuid.Nil, order.ErrNoItems
	}
	if o.TotalAmount <= 0 {
		return uuid.Nil, order.ErrInvalidTotal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *o
	stored.ID = uuid.New()
	stored.Status = order.StatusPending
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	stored.Items = append([]order.LineItem(nil), o.Items...)

	r.orders[stored.ID] = &stored
	r.seq = append(r.seq, stored.ID)

	r.logger.Debug("order appended", "order_id", stored.ID.String(), "user_id", stored.UserID.String())
	return stored.ID, nil
}

// SetStatus updates an order's status. Transitions are not policed here.
func (r *OrderRepository) SetStatus(_ context.Context, id uuid.UUID, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return order.ErrOrderNotFound{OrderID: id}
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound{OrderID: id}
	}
	snapshot := *o
	snapshot.Items = append([]order.LineItem(nil), o.Items...)
	return &snapshot, nil
}

// GetByUser returns up to limit orders for a user, newest first.
func (r *OrderRepository) GetByUser(_ context.Context, userID uuid.UUID, limit int) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*order.Order
	for _, id := range r.seq {
		o := r.orders[id]
		if o.UserID == userID {
			snapshot := *o
			snapshot.Items = append([]order.LineItem(nil), o.Items...)
			out = append(out, &snapshot)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count reports how many orders are stored, for test assertions.
func (r *OrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

var _ order.Repository = (*OrderRepository)(nil)
