package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/commerce-order-fulfillment/internal/domain/payment"
	"github.com/commerce-order-fulfillment/internal/domain/shared"
)

// ChargeRequest is one submission to the gateway. The transaction ID stays
// the same across retries of the same logical charge.
type ChargeRequest struct {
	TransactionID uuid.UUID
	Amount        int64 // Stored in cents/minor units
	Card          shared.CardDetails
	OrderRef      string
}

// GatewayResult is the gateway's verdict on one submission.
type GatewayResult struct {
	Approved  bool
	Reference string // gateway-side transaction reference
	Code      domain.FailureCode
	Message   string
}

// Gateway is the raw payment gateway call. Implementations are treated as
// stateless per call; the transaction ID is the idempotency key.
type Gateway interface {
	Submit(ctx context.Context, req ChargeRequest) (GatewayResult, error)
	Refund(ctx context.Context, transactionID uuid.UUID, amount int64, reason string) (GatewayResult, error)
	Status(ctx context.Context, transactionID uuid.UUID) (domain.Status, error)
}

// SimulatedGateway approves everything after an artificial delay. Declines
// and outages can be scripted per card number prefix, which is enough for
// local wiring and demos.
type SimulatedGateway struct {
	// Latency is the simulated round-trip to the gateway.
	Latency time.Duration

	mu       sync.Mutex
	statuses map[uuid.UUID]domain.Status
}

// NewSimulatedGateway creates a gateway with the given simulated latency.
func NewSimulatedGateway(latency time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		Latency:  latency,
		statuses: make(map[uuid.UUID]domain.Status),
	}
}

func (g *SimulatedGateway) Submit(ctx context.Context, req ChargeRequest) (GatewayResult, error) {
	select {
	case <-time.After(g.Latency):
	case <-ctx.Done():
		return GatewayResult{}, ctx.Err()
	}

	// Reserved test prefixes mimic gateway decline codes.
	switch {
	case len(req.Card.Number) >= 6 && req.Card.Number[:6] == "400000":
		return GatewayResult{Code: domain.FailureCodeInsufficientFunds, Message: "card has insufficient funds"}, nil
	case len(req.Card.Number) >= 6 && req.Card.Number[:6] == "400001":
		return GatewayResult{Code: domain.FailureCodeServiceUnavailable, Message: "gateway temporarily unavailable"}, nil
	}

	g.mu.Lock()
	g.statuses[req.TransactionID] = domain.StatusCompleted
	g.mu.Unlock()

	return GatewayResult{
		Approved:  true,
		Reference: "gw_" + uuid.NewString()[:12],
	}, nil
}

func (g *SimulatedGateway) Refund(ctx context.Context, transactionID uuid.UUID, _ int64, _ string) (GatewayResult, error) {
	select {
	case <-time.After(g.Latency):
	case <-ctx.Done():
		return GatewayResult{}, ctx.Err()
	}

	g.mu.Lock()
	g.statuses[transactionID] = domain.StatusRefunded
	g.mu.Unlock()

	return GatewayResult{
		Approved:  true,
		Reference: "refund_" + uuid.NewString()[:12],
	}, nil
}

func (g *SimulatedGateway) Status(_ context.Context, transactionID uuid.UUID) (domain.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status, ok := g.statuses[transactionID]
	if !ok {
		return domain.StatusPending, nil
	}
	return status, nil
}
