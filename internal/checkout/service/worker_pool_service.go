package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/commerce-order-fulfillment/internal/domain/shared"
)

// WorkerPoolCheckoutService fronts a CheckoutService with a bounded worker
// pool. Many checkouts run concurrently across workers; the steps within one
// checkout stay strictly sequential inside its worker.
type WorkerPoolCheckoutService struct {
	baseService CheckoutService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

type checkoutOutcome struct {
	result *CheckoutResult
	err    error
}

// NewWorkerPoolCheckoutService creates the pool-fronted service.
func NewWorkerPoolCheckoutService(
	baseService CheckoutService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolCheckoutService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolCheckoutService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ProcessCheckout submits the checkout to the worker pool and waits for its
// outcome.
func (s *WorkerPoolCheckoutService) ProcessCheckout(ctx context.Context, request *shared.CheckoutRequest) (*CheckoutResult, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Debug("Submitting checkout to worker pool",
		"request_id", request.RequestID.String(),
		"user_id", request.UserID.String(),
	)

	resultChan := make(chan checkoutOutcome, 1)

	// Copy the request so the worker never races the caller.
	requestCopy := *request

	err := s.pool.Submit(func() {
		result, err := s.baseService.ProcessCheckout(ctx, &requestCopy)
		resultChan <- checkoutOutcome{result: result, err: err}
	})
	if err != nil {
		logger.Error("Failed to submit checkout to worker pool",
			"request_id", request.RequestID.String(),
			"error", err,
		)
		return nil, err
	}

	outcome := <-resultChan
	return outcome.result, outcome.err
}

// CancelOrder passes through to the base service; cancellation is cheap and
// needs no pooling.
func (s *WorkerPoolCheckoutService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	return s.baseService.CancelOrder(ctx, orderID, reason)
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolCheckoutService) Shutdown() {
	s.logger.Info("Shutting down checkout worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolCheckoutService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolCheckoutService) Capacity() int {
	return s.pool.Cap()
}

var _ CheckoutService = (*WorkerPoolCheckoutService)(nil)
