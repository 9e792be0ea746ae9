package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/commerce-order-fulfillment/internal/checkout/service"
	"github.com/commerce-order-fulfillment/internal/domain/shared"
	"github.com/commerce-order-fulfillment/internal/platform/messaging/producers"
)

// CheckoutEventHandler handles incoming checkout request messages from Kafka
type CheckoutEventHandler struct {
	checkoutService service.CheckoutService
	producer        producers.DeadLetterPublisher
	logger          *slog.Logger
}

// NewCheckoutEventHandler creates a new handler
func NewCheckoutEventHandler(
	logger *slog.Logger,
	checkoutService service.CheckoutService,
	producer producers.DeadLetterPublisher,
) *CheckoutEventHandler {
	return &CheckoutEventHandler{
		checkoutService: checkoutService,
		producer:        producer,
		logger:          logger,
	}
}

// HandleMessage processes Kafka messages
func (h *CheckoutEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.CheckoutRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal checkout request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received checkout request for processing",
		"request_id", request.RequestID.String(),
		"user_id", request.UserID.String(),
		"items", len(request.Items),
	)

	result, err := h.checkoutService.ProcessCheckout(ctx, &request)
	if err != nil {
		logger.Error("Failed to process checkout",
			"request_id", request.RequestID.String(),
			"user_id", request.UserID.String(),
			"error", err,
		)

		// A classified checkout failure is a business outcome, not a delivery
		// problem. Compensation already ran, so redelivering the message would
		// only re-charge the customer. Commit the offset.
		var checkoutErr *shared.CheckoutError
		if errors.As(err, &checkoutErr) {
			return nil
		}
		return fmt.Errorf("processing checkout %s failed: %w", request.RequestID.String(), err)
	}

	logger.Info("Successfully processed checkout",
		"request_id", request.RequestID.String(),
		"order_id", result.OrderID.String(),
		"total_amount", result.TotalAmount,
	)
	return nil // Success, commit offset
}
