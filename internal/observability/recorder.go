// Package observability defines the fire-and-forget structured event sink the
// checkout core reports to. Every reservation attempt, payment attempt,
// commit, confirmation and compensation step is recorded for audit; the core
// never consults the sink's outcome.
package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventKind classifies audit events emitted by the checkout core.
type EventKind string

const (
	EventValidationFailed   EventKind = "VALIDATION_FAILED"
	EventReservationAttempt EventKind = "RESERVATION_ATTEMPT"
	EventPaymentAttempt     EventKind = "PAYMENT_ATTEMPT"
	EventOrderCommitted     EventKind = "ORDER_COMMITTED"
	EventReservationConfirm EventKind = "RESERVATION_CONFIRM"
	EventCompensation       EventKind = "COMPENSATION"
	EventNotificationFailed EventKind = "NOTIFICATION_FAILED"
	EventOrderCancelled     EventKind = "ORDER_CANCELLED"
	EventInventoryChange    EventKind = "INVENTORY_CHANGE"
)

// Event is one recorded audit entry.
type Event struct {
	Kind       EventKind      `json:"kind" bson:"kind"`
	Fields     map[string]any `json:"fields" bson:"fields"`
	RecordedAt time.Time      `json:"recorded_at" bson:"recorded_at"`
}

// Recorder is the structured event sink. Record must not block the caller on
// failure and has no return value to consult.
type Recorder interface {
	Record(ctx context.Context, kind EventKind, fields map[string]any)
}

// SlogRecorder writes audit events to the application logger.
type SlogRecorder struct {
	logger *slog.Logger
}

// NewSlogRecorder creates a recorder backed by the given logger.
func NewSlogRecorder(logger *slog.Logger) *SlogRecorder {
	return &SlogRecorder{logger: logger}
}

func (r *SlogRecorder) Record(_ context.Context, kind EventKind, fields map[string]any) {
	attrs := make([]any, 0, 2*len(fields)+2)
	attrs = append(attrs, "kind", string(kind))
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	r.logger.Info("audit event", attrs...)
}

// MemoryRecorder accumulates events in memory for test assertions.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, kind EventKind, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Fields: fields, RecordedAt: time.Now()})
}

// Events returns a copy of everything recorded so far.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByKind returns recorded events matching kind, in order.
func (r *MemoryRecorder) ByKind(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
