// Package ledger provides the in-process inventory ledger: per-product stock
// counters plus time-bounded reservations, guarded by a single mutex. The
// availability check and decrement inside Reserve are atomic with respect to
// every other mutation, so available stock can never go negative.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/commerce-order-fulfillment/internal/domain/inventory"
	"github.com/commerce-order-fulfillment/internal/observability"
)

// Config carries the ledger's operational settings.
type Config struct {
	// ReservationTTL is how long a reservation stays active before the
	// expiry sweep releases it.
	ReservationTTL time.Duration
	// MaxPerReservation caps the quantity of a single reservation.
	MaxPerReservation int
}

type productStock struct {
	total    int
	reserved int
}

// Ledger is the in-memory inventory.Ledger implementation. It owns the
// reservation table and an expiry timer per active reservation; timers are
// canceled on confirm and inspectable through the injected Clock.
type Ledger struct {
	logger   *slog.Logger
	recorder observability.Recorder
	clock    Clock
	cfg      Config

	mu           sync.Mutex
	stock        map[string]*productStock
	reservations map[uuid.UUID]*inventory.Reservation
	timers       map[uuid.UUID]Timer
}

// NewLedger creates an empty ledger. Stock is introduced with SeedStock.
func NewLedger(logger *slog.Logger, recorder observability.Recorder, clock Clock, cfg Config) *Ledger {
	if cfg.MaxPerReservation <= 0 {
		cfg.MaxPerReservation = 1000
	}
	return &Ledger{
		logger:       logger,
		recorder:     recorder,
		clock:        clock,
		cfg:          cfg,
		stock:        make(map[string]*productStock),
		reservations: make(map[uuid.UUID]*inventory.Reservation),
		timers:       make(map[uuid.UUID]Timer),
	}
}

// SeedStock sets the total stock for a product, registering it if unknown.
func (l *Ledger) SeedStock(productID string, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stock[productID]
	if !ok {
		s = &productStock{}
		l.stock[productID] = s
	}
	s.total = total
}

// Reserve atomically checks availability, decrements it and creates an
// active reservation that will be released by the expiry sweep unless
// confirmed within the configured TTL.
func (l *Ledger) Reserve(ctx context.Context, productID string, quantity int, orderID string) (*inventory.Reservation, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if quantity > l.cfg.MaxPerReservation {
		return nil, inventory.ErrQuantityTooBig
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stock[productID]
	if !ok {
		return nil, inventory.ErrUnknownProduct{ProductID: productID}
	}

	available := s.total - s.reserved
	if available < quantity {
		l.logger.Warn("insufficient stock",
			"product_id", productID,
			"requested", quantity,
			"available", available,
			"order_id", orderID,
		)
		return nil, inventory.ErrInsufficientStock{ProductID: productID, Requested: quantity, Available: available}
	}

	now := l.clock.Now()
	res := &inventory.Reservation{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		OrderID:   orderID,
		Status:    inventory.ReservationStatusActive,
		CreatedAt: now,
		ExpiresAt: now.Add(l.cfg.ReservationTTL),
	}
	s.reserved += quantity
	l.reservations[res.ID] = res

	// The expiry callback is just another concurrent caller of release: it
	// competes for the critical section and loses cleanly to Confirm.
	resID := res.ID
	l.timers[res.ID] = l.clock.AfterFunc(l.cfg.ReservationTTL, func() {
		l.expire(resID)
	})

	l.recorder.Record(ctx, observability.EventInventoryChange, map[string]any{
		"product_id":     productID,
		"change":         -quantity,
		"reason":         "reservation",
		"order_id":       orderID,
		"reservation_id": res.ID.String(),
	})

	return res, nil
}

// Confirm transitions an active reservation to confirmed and cancels its
// expiry timer. The stock stays reserved until the quantity ships.
func (l *Ledger) Confirm(ctx context.Context, reservationID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, ok := l.reservations[reservationID]
	if !ok {
		return inventory.ErrReservationNotFound{ReservationID: reservationID}
	}
	if res.Status != inventory.ReservationStatusActive {
		return inventory.ErrReservationFinalized{ReservationID: reservationID, Status: res.Status}
	}

	res.Status = inventory.ReservationStatusConfirmed
	res.ResolvedAt = l.clock.Now()
	l.stopTimer(reservationID)
	return nil
}

// Release returns an active reservation's quantity to available stock. It is
// idempotent: releasing an already released or confirmed reservation is a
// no-op reported as (false, nil).
func (l *Ledger) Release(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.releaseLocked(ctx, reservationID, "release")
}

// releaseLocked implements release under the already-held critical section.
func (l *Ledger) releaseLocked(ctx context.Context, reservationID uuid.UUID, reason string) (bool, error) {
	res, ok := l.reservations[reservationID]
	if !ok {
		l.logger.Warn("attempted to release non-existent reservation", "reservation_id", reservationID.String())
		return false, inventory.ErrReservationNotFound{ReservationID: reservationID}
	}
	if res.Status != inventory.ReservationStatusActive {
		return false, nil
	}

	if s, ok := l.stock[res.ProductID]; ok {
		s.reserved -= res.Quantity
	}
	res.Status = inventory.ReservationStatusReleased
	res.ResolvedAt = l.clock.Now()
	l.stopTimer(reservationID)

	l.recorder.Record(ctx, observability.EventInventoryChange, map[string]any{
		"product_id":     res.ProductID,
		"change":         res.Quantity,
		"reason":         reason,
		"order_id":       res.OrderID,
		"reservation_id": reservationID.String(),
	})
	return true, nil
}

// ReleaseQuantity restocks a product without a reservation, for manual
// corrections outside the checkout flow.
func (l *Ledger) ReleaseQuantity(ctx context.Context, productID string, quantity int, orderID string) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stock[productID]
	if !ok {
		return inventory.ErrUnknownProduct{ProductID: productID}
	}
	s.total += quantity

	l.recorder.Record(ctx, observability.EventInventoryChange, map[string]any{
		"product_id": productID,
		"change":     quantity,
		"reason":     "manual_release",
		"order_id":   orderID,
	})
	return nil
}

// CheckAvailability reports whether quantity units are currently reservable.
func (l *Ledger) CheckAvailability(ctx context.Context, productID string, quantity int) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stock[productID]
	if !ok {
		return false, 0, inventory.ErrUnknownProduct{ProductID: productID}
	}
	available := s.total - s.reserved
	return available >= quantity, available, nil
}

// Stock returns the current counters for a product.
func (l *Ledger) Stock(ctx context.Context, productID string) (inventory.StockLevel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stock[productID]
	if !ok {
		return inventory.StockLevel{}, inventory.ErrUnknownProduct{ProductID: productID}
	}
	return inventory.StockLevel{ProductID: productID, Total: s.total, Reserved: s.reserved}, nil
}

// LowStock lists products whose available count is at or below threshold.
func (l *Ledger) LowStock(ctx context.Context, threshold int) ([]inventory.StockLevel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []inventory.StockLevel
	for id, s := range l.stock {
		if s.total-s.reserved <= threshold {
			out = append(out, inventory.StockLevel{ProductID: id, Total: s.total, Reserved: s.reserved})
		}
	}
	return out, nil
}

// Reservation returns a snapshot of a reservation for inspection.
func (l *Ledger) Reservation(ctx context.Context, reservationID uuid.UUID) (*inventory.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, ok := l.reservations[reservationID]
	if !ok {
		return nil, inventory.ErrReservationNotFound{ReservationID: reservationID}
	}
	snapshot := *res
	return &snapshot, nil
}

// expire runs when a reservation's TTL elapses. If Confirm or Release won
// the critical section first the reservation is no longer active and the
// sweep does nothing.
func (l *Ledger) expire(reservationID uuid.UUID) {
	ctx := context.Background()
	l.mu.Lock()
	defer l.mu.Unlock()

	res, ok := l.reservations[reservationID]
	if !ok || res.Status != inventory.ReservationStatusActive {
		return
	}

	released, _ := l.releaseLocked(ctx, reservationID, "expiry")
	if released {
		l.logger.Warn("reservation expired",
			"reservation_id", reservationID.String(),
			"product_id", res.ProductID,
			"quantity", res.Quantity,
			"order_id", res.OrderID,
		)
	}
}

func (l *Ledger) stopTimer(reservationID uuid.UUID) {
	if t, ok := l.timers[reservationID]; ok {
		t.Stop()
		delete(l.timers, reservationID)
	}
}

var _ inventory.Ledger = (*Ledger)(nil)
