// Package service implements the order orchestrator: the saga that reserves
// stock, charges payment, commits the order and confirms reservations, with
// compensating stock releases on any partial failure.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/commerce-order-fulfillment/internal/domain/catalog"
	"github.com/commerce-order-fulfillment/internal/domain/inventory"
	"github.com/commerce-order-fulfillment/internal/domain/order"
	"github.com/commerce-order-fulfillment/internal/domain/shared"
	"github.com/commerce-order-fulfillment/internal/domain/user"
	"github.com/commerce-order-fulfillment/internal/notification"
	"github.com/commerce-order-fulfillment/internal/observability"
	"github.com/commerce-order-fulfillment/internal/validation"
)

// Config carries the business limits applied during validation.
type Config struct {
	TaxRate        float64 // e.g. 0.08
	MinOrderAmount int64   // cents
	MaxOrderAmount int64   // cents
	MaxCartItems   int
}

// CheckoutServiceImpl coordinates the ledger, the payment client, the order
// store and the collaborators around them. All dependencies are injected;
// the service holds no state of its own, so one instance serves many
// concurrent checkouts.
type CheckoutServiceImpl struct {
	ledger    inventory.Ledger
	charger   Charger
	orders    order.Repository
	directory user.Directory
	catalog   catalog.Catalog
	notifier  notification.Notifier
	recorder  observability.Recorder
	logger    *slog.Logger
	cfg       Config
}

// NewCheckoutService creates the saga coordinator.
func NewCheckoutService(
	logger *slog.Logger,
	cfg Config,
	ledger inventory.Ledger,
	charger Charger,
	orders order.Repository,
	directory user.Directory,
	productCatalog catalog.Catalog,
	notifier notification.Notifier,
	recorder observability.Recorder,
) CheckoutService {
	return &CheckoutServiceImpl{
		ledger:    ledger,
		charger:   charger,
		orders:    orders,
		directory: directory,
		catalog:   productCatalog,
		notifier:  notifier,
		recorder:  recorder,
		logger:    logger,
		cfg:       cfg,
	}
}

// pricedOrder is the validated, price-snapshotted form of a request.
type pricedOrder struct {
	items       []order.LineItem
	subtotal    int64
	taxAmount   int64
	totalAmount int64
	email       string
}

// ProcessCheckout runs the saga: validate, reserve, pay, commit, confirm.
// Once at least one reservation exists, any failure releases every
// reservation made so far before the original error is returned.
func (s *CheckoutServiceImpl) ProcessCheckout(ctx context.Context, request *shared.CheckoutRequest) (*CheckoutResult, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}
	logger = logger.With("request_id", request.RequestID.String(), "user_id", request.UserID.String())

	logger.Info("Processing checkout", "items", len(request.Items))

	// 1. Validate. Nothing has been reserved yet, so a failure here needs
	// no compensation.
	priced, err := s.validate(ctx, request)
	if err != nil {
		logger.Warn("Checkout validation failed", "error", err)
		s.recorder.Record(ctx, observability.EventValidationFailed, map[string]any{
			"request_id": request.RequestID.String(),
			"user_id":    request.UserID.String(),
			"reason":     err.Error(),
		})
		return nil, shared.NewCheckoutError(shared.ErrorKindValidation, err)
	}

	orderRef := "order_" + request.RequestID.String()

	// 2. Reserve stock item by item, in the order supplied by the caller.
	reservations, err := s.reserveItems(ctx, logger, request, orderRef)
	if err != nil {
		// reserveItems has already released the partial reservations.
		return nil, shared.NewCheckoutError(shared.ErrorKindResource, err)
	}

	// 3. Charge the order total. The client retries transient gateway
	// failures internally; whatever error comes back is final.
	attempt, err := s.charger.Charge(ctx, priced.totalAmount, request.Card, orderRef)
	if err != nil {
		logger.Error("Payment failed, releasing reservations", "error", err)
		s.compensate(ctx, logger, reservations, "payment_failure")
		return nil, shared.NewCheckoutError(shared.ErrorKindPayment, err)
	}

	// 4. Commit the order. A failure here is the dangling-charge case: the
	// customer was charged but no order exists. It surfaces as a distinct
	// error kind so callers reconcile manually instead of re-charging.
	newOrder, err := order.NewOrder(request.UserID, priced.items, priced.subtotal, priced.taxAmount, priced.totalAmount, attempt.TransactionID)
	if err == nil {
		_, err = s.orders.Append(ctx, newOrder)
	}
	if err != nil {
		logger.Error("Order commit failed after successful payment, releasing reservations",
			"transaction_id", attempt.TransactionID.String(),
			"error", err,
		)
		s.compensate(ctx, logger, reservations, "commit_failure")
		return nil, shared.NewCheckoutError(shared.ErrorKindCommit,
			fmt.Errorf("order commit failed after payment %s: %w", attempt.TransactionID.String(), err))
	}

	s.recorder.Record(ctx, observability.EventOrderCommitted, map[string]any{
		"order_id":       newOrder.ID.String(),
		"user_id":        request.UserID.String(),
		"transaction_id": attempt.TransactionID.String(),
		"total_amount":   priced.totalAmount,
	})

	// 5. Confirm reservations. The committed order is the source of truth
	// now; confirmation failures are logged, never rolled back.
	s.confirmReservations(ctx, logger, newOrder.ID, reservations)

	if err := s.orders.SetStatus(ctx, newOrder.ID, order.StatusCompleted); err != nil {
		logger.Warn("Failed to mark order completed", "order_id", newOrder.ID.String(), "error", err)
	}

	// 6. Best-effort confirmation email. Failure never fails the checkout.
	s.notifyConfirmed(ctx, logger, newOrder, priced)

	logger.Info("Checkout completed",
		"order_id", newOrder.ID.String(),
		"transaction_id", attempt.TransactionID.String(),
		"total_amount", priced.totalAmount,
	)

	return &CheckoutResult{
		OrderID:              newOrder.ID,
		PaymentTransactionID: attempt.TransactionID,
		TotalAmount:          priced.totalAmount,
	}, nil
}

// validate checks the request shape, the user, the card and address, and
// snapshots unit prices from the catalog.
func (s *CheckoutServiceImpl) validate(ctx context.Context, request *shared.CheckoutRequest) (*pricedOrder, error) {
	if len(request.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	if s.cfg.MaxCartItems > 0 && len(request.Items) > s.cfg.MaxCartItems {
		return nil, fmt.Errorf("order exceeds maximum of %d items", s.cfg.MaxCartItems)
	}
	for _, item := range request.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %s must be positive", item.ProductID)
		}
	}

	u, err := s.directory.GetUser(ctx, request.UserID)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user not found: %s", request.UserID.String())
	}

	email := request.Email
	if email == "" {
		email = u.Email
	}
	if ok, reason := validation.ValidateEmail(email); !ok {
		return nil, fmt.Errorf("invalid email: %s", reason)
	}
	if ok, reason := validation.ValidateAddress(request.ShippingAddress); !ok {
		return nil, fmt.Errorf("invalid shipping address: %s", reason)
	}
	if ok, reason := validation.ValidateCreditCard(request.Card.Number); !ok {
		return nil, fmt.Errorf("invalid card: %s", reason)
	}

	priced := &pricedOrder{email: email}
	for _, item := range request.Items {
		p, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product lookup failed for %s: %w", item.ProductID, err)
		}
		if p == nil {
			return nil, fmt.Errorf("product not found: %s", item.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("product not available: %s", item.ProductID)
		}

		priced.items = append(priced.items, order.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   p.PriceCents,
		})
		priced.subtotal += int64(item.Quantity) * p.PriceCents
	}

	priced.taxAmount = int64(math.Round(float64(priced.subtotal) * s.cfg.TaxRate))
	priced.totalAmount = priced.subtotal + priced.taxAmount

	if s.cfg.MinOrderAmount > 0 && priced.totalAmount < s.cfg.MinOrderAmount {
		return nil, fmt.Errorf("order total below minimum amount")
	}
	if s.cfg.MaxOrderAmount > 0 && priced.totalAmount > s.cfg.MaxOrderAmount {
		return nil, fmt.Errorf("order total exceeds maximum amount")
	}

	return priced, nil
}

// reserveItems reserves stock for every line item. If any reservation fails
// the ones already made are released before the error is returned, so no
// partial reservation state ever leaks out.
func (s *CheckoutServiceImpl) reserveItems(ctx context.Context, logger *slog.Logger, request *shared.CheckoutRequest, orderRef string) ([]*inventory.Reservation, error) {
	var reservations []*inventory.Reservation

	for _, item := range request.Items {
		s.recorder.Record(ctx, observability.EventReservationAttempt, map[string]any{
			"request_id": request.RequestID.String(),
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
			"order_ref":  orderRef,
		})

		res, err := s.ledger.Reserve(ctx, item.ProductID, item.Quantity, orderRef)
		if err != nil {
			logger.Warn("Reservation failed, releasing prior reservations",
				"product_id", item.ProductID,
				"reserved_so_far", len(reservations),
				"error", err,
			)
			s.compensate(ctx, logger, reservations, "reservation_failure")
			return nil, err
		}
		reservations = append(reservations, res)
	}

	logger.Info("Reserved all items", "count", len(reservations))
	return reservations, nil
}

// compensate releases every reservation, in reservation order. Each release
// is attempted independently: one failure is logged and does not stop the
// rest, and the original saga error is always what the caller sees.
func (s *CheckoutServiceImpl) compensate(ctx context.Context, logger *slog.Logger, reservations []*inventory.Reservation, reason string) {
	for _, res := range reservations {
		released, err := s.ledger.Release(ctx, res.ID)
		if err != nil {
			logger.Error("Failed to release reservation during compensation",
				"reservation_id", res.ID.String(),
				"product_id", res.ProductID,
				"error", err,
			)
		}
		s.recorder.Record(ctx, observability.EventCompensation, map[string]any{
			"reservation_id": res.ID.String(),
			"product_id":     res.ProductID,
			"quantity":       res.Quantity,
			"released":       released,
			"reason":         reason,
		})
	}
}

// confirmReservations confirms every reservation of a committed order.
func (s *CheckoutServiceImpl) confirmReservations(ctx context.Context, logger *slog.Logger, orderID uuid.UUID, reservations []*inventory.Reservation) {
	for _, res := range reservations {
		err := s.ledger.Confirm(ctx, res.ID)
		if err != nil {
			// The order is already committed; an expired or missing
			// reservation here is an audit concern, not a failure.
			logger.Warn("Failed to confirm reservation post-commit",
				"order_id", orderID.String(),
				"reservation_id", res.ID.String(),
				"error", err,
			)
		}
		s.recorder.Record(ctx, observability.EventReservationConfirm, map[string]any{
			"order_id":       orderID.String(),
			"reservation_id": res.ID.String(),
			"confirmed":      err == nil,
		})
	}
}

func (s *CheckoutServiceImpl) notifyConfirmed(ctx context.Context, logger *slog.Logger, o *order.Order, priced *pricedOrder) {
	summary := notification.OrderSummary{
		OrderID:              o.ID.String(),
		Items:                o.Items,
		Subtotal:             o.Subtotal,
		TaxAmount:            o.TaxAmount,
		TotalAmount:          o.TotalAmount,
		PaymentTransactionID: o.PaymentTransactionID.String(),
	}
	if err := s.notifier.OrderConfirmed(ctx, priced.email, summary); err != nil {
		logger.Warn("Order confirmation notification failed", "order_id", o.ID.String(), "error", err)
		s.recorder.Record(ctx, observability.EventNotificationFailed, map[string]any{
			"order_id":  o.ID.String(),
			"recipient": priced.email,
			"error":     err.Error(),
		})
	}
}

// CancelOrder marks an order cancelled. No refund or restock flow is wired
// here; cancellation of shipped stock is handled operationally.
func (s *CheckoutServiceImpl) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	if err := s.orders.SetStatus(ctx, orderID, order.StatusCancelled); err != nil {
		return err
	}

	s.logger.Info("Order cancelled", "order_id", orderID.String(), "reason", reason)
	s.recorder.Record(ctx, observability.EventOrderCancelled, map[string]any{
		"order_id": orderID.String(),
		"reason":   reason,
	})
	return nil
}
