package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commerce-order-fulfillment/internal/platform/messaging/producers"
)

// OrderConfirmedEvent is the message published for every confirmed order.
// Downstream mailers consume it and handle the actual SMTP delivery.
type OrderConfirmedEvent struct {
	Email     string       `json:"email"`
	Summary   OrderSummary `json:"summary"`
	EmailBody string       `json:"email_body"`
	SentAt    time.Time    `json:"sent_at"`
}

// KafkaNotifier publishes order confirmations to the order-events topic.
type KafkaNotifier struct {
	producer producers.MessagePublisher
	logger   *slog.Logger
}

// NewKafkaNotifier creates a notifier backed by the given publisher.
func NewKafkaNotifier(logger *slog.Logger, producer producers.MessagePublisher) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, logger: logger}
}

func (n *KafkaNotifier) OrderConfirmed(ctx context.Context, email string, summary OrderSummary) error {
	body, err := BuildOrderConfirmationEmail(summary)
	if err != nil {
		return err
	}

	event := OrderConfirmedEvent{
		Email:     email,
		Summary:   summary,
		EmailBody: body,
		SentAt:    time.Now(),
	}

	if err := n.producer.Publish(ctx, summary.OrderID, event); err != nil {
		return fmt.Errorf("failed to publish order confirmation for %s: %w", summary.OrderID, err)
	}

	n.logger.Debug("order confirmation published", "order_id", summary.OrderID, "recipient", email)
	return nil
}

var _ Notifier = (*KafkaNotifier)(nil)
