// Package payment implements the payment gateway client: charge submission
// with fail-fast validation, classification of gateway outcomes, and retry of
// transient failures with exponential backoff.
package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domain "github.com/commerce-order-fulfillment/internal/domain/payment"
	"github.com/commerce-order-fulfillment/internal/domain/shared"
	"github.com/commerce-order-fulfillment/internal/observability"
)

// ClientConfig carries charge policy settings.
type ClientConfig struct {
	// MaxRetries bounds retries of transient failures; total attempts are
	// 1 + MaxRetries.
	MaxRetries int
	// BackoffBase is the first retry delay; it doubles per attempt.
	BackoffBase time.Duration
	// AmountCeiling rejects charges above this many cents before any
	// gateway call.
	AmountCeiling int64
	// CallTimeout bounds a single gateway submission.
	CallTimeout time.Duration
}

// Client drives a Gateway with the retry policy of §4.2: transient outcomes
// retry with exponential backoff under a stable transaction ID, terminal
// declines fail immediately.
type Client struct {
	gateway  Gateway
	recorder observability.Recorder
	logger   *slog.Logger
	cfg      ClientConfig

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a payment client.
func NewClient(logger *slog.Logger, recorder observability.Recorder, gateway Gateway, cfg ClientConfig) *Client {
	return &Client{
		gateway:  gateway,
		recorder: recorder,
		logger:   logger,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Charge submits one logical payment. On success the returned attempt has
// status COMPLETED and exactly the requested amount; on failure the error is
// a *payment.Error whose code distinguishes terminal declines from gateway
// exhaustion.
func (c *Client) Charge(ctx context.Context, amount int64, card shared.CardDetails, orderRef string) (*domain.Attempt, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if c.cfg.AmountCeiling > 0 && amount > c.cfg.AmountCeiling {
		return nil, domain.ErrAmountTooLarge
	}
	if missing := missingCardFields(card); missing != "" {
		return nil, &domain.Error{
			Code:    domain.FailureCodeInvalidCard,
			Message: "missing card fields: " + missing,
		}
	}

	transactionID := uuid.New()
	logger := c.logger.With("transaction_id", transactionID.String(), "order_ref", orderRef)

	for attempt := 1; ; attempt++ {
		c.recorder.Record(ctx, observability.EventPaymentAttempt, map[string]any{
			"transaction_id": transactionID.String(),
			"attempt_number": attempt,
			"amount":         amount,
			"order_ref":      orderRef,
		})

		result, err := c.submit(ctx, ChargeRequest{
			TransactionID: transactionID,
			Amount:        amount,
			Card:          card,
			OrderRef:      orderRef,
		})

		if err == nil && result.Approved {
			logger.Info("payment completed",
				"attempt_number", attempt,
				"amount", amount,
				"gateway_reference", result.Reference,
			)
			c.recorder.Record(ctx, observability.EventPaymentAttempt, map[string]any{
				"transaction_id":    transactionID.String(),
				"attempt_number":    attempt,
				"amount":            amount,
				"outcome":           "completed",
				"gateway_reference": result.Reference,
			})
			return &domain.Attempt{
				TransactionID:    transactionID,
				AttemptNumber:    attempt,
				Amount:           amount,
				Status:           domain.StatusCompleted,
				GatewayReference: result.Reference,
				ProcessedAt:      time.Now(),
			}, nil
		}

		code := classify(result, err)
		c.recorder.Record(ctx, observability.EventPaymentAttempt, map[string]any{
			"transaction_id": transactionID.String(),
			"attempt_number": attempt,
			"amount":         amount,
			"outcome":        string(code),
		})

		if !code.Retryable() {
			logger.Warn("payment declined", "attempt_number", attempt, "code", string(code))
			return nil, &domain.Error{Code: code, TransactionID: transactionID, Message: declineMessage(result, err)}
		}

		if attempt > c.cfg.MaxRetries {
			logger.Error("payment retries exhausted", "attempts", attempt)
			return nil, &domain.Error{
				Code:          domain.FailureCodeGatewayExhausted,
				TransactionID: transactionID,
				Message:       "retries exhausted: " + declineMessage(result, err),
			}
		}

		// Exponential backoff: base, 2*base, 4*base, ...
		delay := c.cfg.BackoffBase << (attempt - 1)
		logger.Warn("transient payment failure, backing off",
			"attempt_number", attempt,
			"code", string(code),
			"delay", delay,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, &domain.Error{Code: domain.FailureCodeGatewayExhausted, TransactionID: transactionID, Message: err.Error()}
		}
	}
}

// submit runs one gateway call under the configured per-call timeout.
func (c *Client) submit(ctx context.Context, req ChargeRequest) (GatewayResult, error) {
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}
	return c.gateway.Submit(ctx, req)
}

// Refund reverses a prior charge, fully when amount is 0.
func (c *Client) Refund(ctx context.Context, transactionID uuid.UUID, amount int64, reason string) (*domain.Refund, error) {
	result, err := c.gateway.Refund(ctx, transactionID, amount, reason)
	if err != nil {
		return nil, err
	}
	if !result.Approved {
		return nil, &domain.Error{Code: result.Code, TransactionID: transactionID, Message: result.Message}
	}

	c.logger.Info("payment refunded",
		"transaction_id", transactionID.String(),
		"amount", amount,
		"reason", reason,
	)
	return &domain.Refund{
		RefundID:              uuid.New(),
		OriginalTransactionID: transactionID,
		Amount:                amount,
		Reason:                reason,
		ProcessedAt:           time.Now(),
	}, nil
}

// VerifyStatus queries the gateway for the state of a prior charge.
func (c *Client) VerifyStatus(ctx context.Context, transactionID uuid.UUID) (domain.Status, error) {
	return c.gateway.Status(ctx, transactionID)
}

// classify maps a gateway outcome to a failure code. Transport errors and
// timeouts count as transient gateway failures.
func classify(result GatewayResult, err error) domain.FailureCode {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.FailureCodeGatewayTimeout
		}
		return domain.FailureCodeNetworkError
	}
	if result.Code != "" {
		return result.Code
	}
	return domain.FailureCodeUnknown
}

func declineMessage(result GatewayResult, err error) string {
	if err != nil {
		return err.Error()
	}
	if result.Message != "" {
		return result.Message
	}
	return "gateway declined"
}

func missingCardFields(card shared.CardDetails) string {
	missing := ""
	add := func(name string) {
		if missing != "" {
			missing += ", "
		}
		missing += name
	}
	if card.Number == "" {
		add("card_number")
	}
	if card.ExpiryMonth == "" {
		add("expiry_month")
	}
	if card.ExpiryYear == "" {
		add("expiry_year")
	}
	if card.CVV == "" {
		add("cvv")
	}
	return missing
}
