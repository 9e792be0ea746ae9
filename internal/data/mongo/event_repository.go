// Package mongo provides the MongoDB audit-event sink. Every checkout audit
// event is appended to a capped-growth collection for later reconciliation;
// writes are fire-and-forget so a slow or absent Mongo never blocks a saga.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commerce-order-fulfillment/internal/observability"
)

const (
	// EventCollectionName is the name of the audit events collection in MongoDB
	EventCollectionName = "checkout_events"

	writeTimeout = 5 * time.Second
)

// EventRepository implements observability.Recorder against MongoDB.
type EventRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEventRepository creates a new MongoDB audit event repository
func NewEventRepository(logger *slog.Logger, db *mongo.Database) *EventRepository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// Record appends one audit event. The sink contract is fire-and-forget:
// failures are logged and swallowed, never surfaced to the caller.
func (r *EventRepository) Record(ctx context.Context, kind observability.EventKind, fields map[string]any) {
	collection := r.db.Collection(EventCollectionName)

	// Detach from the caller's deadline so compensation events still land
	// after the originating request has already failed.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	event := observability.Event{
		Kind:       kind,
		Fields:     fields,
		RecordedAt: time.Now(),
	}

	if _, err := collection.InsertOne(writeCtx, event); err != nil {
		r.logger.Error("Failed to record audit event",
			"kind", string(kind),
			"error", err)
	}
}

// GetByKind retrieves up to limit audit events of one kind, newest first.
func (r *EventRepository) GetByKind(ctx context.Context, kind observability.EventKind, limit int) ([]observability.Event, error) {
	collection := r.db.Collection(EventCollectionName)

	filter := bson.M{"kind": string(kind)}
	opts := options.Find().
		SetSort(bson.M{"recorded_at": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []observability.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode audit events: %w", err)
	}
	return events, nil
}

var _ observability.Recorder = (*EventRepository)(nil)
