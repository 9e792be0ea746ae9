package memory

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commerce-order-fulfillment/internal/domain/order"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleOrder(userID uuid.UUID) *order.Order {
	return &order.Order{
		UserID: userID,
		Items: []order.LineItem{
			{ProductID: "prod_a", ProductName: "Widget", Quantity: 2, UnitPrice: 2000},
		},
		Subtotal:             4000,
		TaxAmount:            320,
		TotalAmount:          4320,
		PaymentTransactionID: uuid.New(),
	}
}

func TestOrderRepository_Append(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestLogger())
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		id, err := repo.Append(ctx, sampleOrder(userID))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, stored.Status)
		assert.Equal(t, int64(4320), stored.TotalAmount)
		assert.False(t, stored.CreatedAt.IsZero())
	})

	t.Run("validation failures", func(t *testing.T) {
		noUser := sampleOrder(userID)
		noUser.UserID = uuid.Nil
		_, err := repo.Append(ctx, noUser)
		assert.ErrorIs(t, err, order.ErrMissingUser)

		noItems := sampleOrder(userID)
		noItems.Items = nil
		_, err = repo.Append(ctx, noItems)
		assert.ErrorIs(t, err, order.ErrNoItems)

		zeroTotal := sampleOrder(userID)
		zeroTotal.TotalAmount = 0
		_, err = repo.Append(ctx, zeroTotal)
		assert.ErrorIs(t, err, order.ErrInvalidTotal)
	})
}

func TestOrderRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestLogger())

	id, err := repo.Append(ctx, sampleOrder(uuid.New()))
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, id, order.StatusCompleted))
	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, stored.Status)

	err = repo.SetStatus(ctx, uuid.New(), order.StatusCancelled)
	var notFound order.ErrOrderNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestOrderRepository_GetByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestLogger())
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, sampleOrder(userID))
		require.NoError(t, err)
	}
	_, err := repo.Append(ctx, sampleOrder(uuid.New()))
	require.NoError(t, err)

	orders, err := repo.GetByUser(ctx, userID, 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, userID, o.UserID)
	}
	assert.Equal(t, 4, repo.Count())
}
