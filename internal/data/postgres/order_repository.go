// Package postgres provides the PostgreSQL implementation of the order
// repository. Orders are append-only: inserts happen once at commit time and
// the status column is the only thing updated afterwards.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/commerce-order-fulfillment/internal/domain/order"
	"github.com/commerce-order-fulfillment/internal/platform/persistence"
)

// OrderRepository implements the order.Repository interface for PostgreSQL
type OrderRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(logger *slog.Logger, db *persistence.PostgresDB) order.Repository {
	return &OrderRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so multiple calls share one
// atomic scope.
func (r *OrderRepository) WithTx(tx pgx.Tx) order.Repository {
	return &OrderRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append validates required fields, assigns a fresh order ID and inserts the
// order with status PENDING. Line items are stored as a JSONB snapshot.
func (r *OrderRepository) Append(ctx context.Context, o *order.Order) (uuid.UUID, error) {
	if o.UserID == uuid.Nil {
		return uuid.Nil, order.ErrMissingUser
	}
	if len(o.Items) == 0 {
		return uuid.Nil, order.ErrNoItems
	}
	if o.TotalAmount <= 0 {
		return uuid.Nil, order.ErrInvalidTotal
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	id := uuid.New()
	now := time.Now()

	query := `
		INSERT INTO orders (id, user_id, items, subtotal, tax_amount, total_amount, status, payment_transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.querier.Exec(ctx, query,
		id,
		o.UserID,
		items,
		o.Subtotal,
		o.TaxAmount,
		o.TotalAmount,
		string(order.StatusPending),
		o.PaymentTransactionID,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to append order", "error", err)
		return uuid.Nil, fmt.Errorf("failed to append order: %w", err)
	}

	o.ID = id
	o.Status = order.StatusPending
	o.CreatedAt = now
	o.UpdatedAt = now
	return id, nil
}

// SetStatus updates the status of an existing order
func (r *OrderRepository) SetStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	tag, err := r.querier.Exec(ctx, query, string(status), time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update order status", "order_id", id.String(), "error", err)
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound{OrderID: id}
	}

	return nil
}

// GetByID retrieves an order by its ID
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `
		SELECT id, user_id, items, subtotal, tax_amount, total_amount, status, payment_transaction_id, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	o, err := r.scanOrder(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound{OrderID: id}
		}
		r.logger.Error("Failed to get order", "order_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return o, nil
}

// GetByUser retrieves up to limit orders for a user, newest first
func (r *OrderRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*order.Order, error) {
	query := `
		SELECT id, user_id, items, subtotal, tax_amount, total_amount, status, payment_transaction_id, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("Failed to get orders for user", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get orders for user: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var items []byte
	var status string

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&items,
		&o.Subtotal,
		&o.TaxAmount,
		&o.TotalAmount,
		&status,
		&o.PaymentTransactionID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	return &o, nil
}
