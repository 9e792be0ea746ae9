package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorder(t *testing.T) {
	recorder := NewMemoryRecorder()
	ctx := context.Background()

	recorder.Record(ctx, EventPaymentAttempt, map[string]any{"attempt": 1})
	recorder.Record(ctx, EventPaymentAttempt, map[string]any{"attempt": 2})
	recorder.Record(ctx, EventOrderCommitted, map[string]any{"order_id": "abc"})

	all := recorder.Events()
	require.Len(t, all, 3)
	assert.False(t, all[0].RecordedAt.IsZero())

	payments := recorder.ByKind(EventPaymentAttempt)
	require.Len(t, payments, 2)
	assert.Equal(t, 1, payments[0].Fields["attempt"])
	assert.Equal(t, 2, payments[1].Fields["attempt"])

	assert.Empty(t, recorder.ByKind(EventCompensation))
}

func TestSlogRecorder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	recorder := NewSlogRecorder(logger)

	recorder.Record(context.Background(), EventCompensation, map[string]any{
		"reservation_id": "res-1",
		"reason":         "payment_failure",
	})

	out := buf.String()
	assert.Contains(t, out, string(EventCompensation))
	assert.Contains(t, out, "res-1")
	assert.Contains(t, out, "payment_failure")
}
