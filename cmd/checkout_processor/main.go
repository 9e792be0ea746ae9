package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/commerce-order-fulfillment/internal/checkout/consumer"
	"github.com/commerce-order-fulfillment/internal/checkout/service"
	"github.com/commerce-order-fulfillment/internal/config"
	"github.com/commerce-order-fulfillment/internal/data/mongo"
	"github.com/commerce-order-fulfillment/internal/data/postgres"
	"github.com/commerce-order-fulfillment/internal/domain/catalog"
	"github.com/commerce-order-fulfillment/internal/domain/user"
	"github.com/commerce-order-fulfillment/internal/ledger"
	"github.com/commerce-order-fulfillment/internal/logger"
	"github.com/commerce-order-fulfillment/internal/notification"
	"github.com/commerce-order-fulfillment/internal/payment"
	"github.com/commerce-order-fulfillment/internal/platform/messaging/consumers"
	"github.com/commerce-order-fulfillment/internal/platform/messaging/producers"
	"github.com/commerce-order-fulfillment/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("checkout_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Checkout Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	orderRepo := postgres.NewOrderRepository(log, postgresDB)
	eventRecorder := mongo.NewEventRepository(log, mongoDB.Database())

	// Initialize the in-memory stock ledger with expiring reservations
	stockLedger := ledger.NewLedger(log, eventRecorder, ledger.RealClock{}, ledger.Config{
		ReservationTTL:    cfg.Inventory.ReservationTTL,
		MaxPerReservation: cfg.Inventory.MaxPerReservation,
	})

	// Initialize the payment client against the simulated gateway
	gateway := payment.NewSimulatedGateway(100 * time.Millisecond)
	charger := payment.NewClient(log, eventRecorder, gateway, payment.ClientConfig{
		MaxRetries:    cfg.Payment.MaxRetries,
		BackoffBase:   cfg.Payment.BackoffBase,
		AmountCeiling: cfg.Payment.AmountCeiling,
		CallTimeout:   cfg.Payment.CallTimeout,
	})

	// Initialize catalog and user directory
	productCatalog := catalog.NewMemoryCatalog(nil)
	userDirectory := user.NewMemoryDirectory(nil)
	if cfg.Application.Env == "development" {
		seedDemoData(stockLedger, productCatalog, userDirectory)
	}

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler should be nil-safe.

	// Initialize order events producer for confirmation notifications
	orderEventsProducer, err := producers.NewOrderEventsProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize order events Kafka producer", "error", err)
		os.Exit(1)
	}
	notifier := notification.NewKafkaNotifier(log, orderEventsProducer)

	// Initialize checkout service behind a worker pool
	baseService := service.NewCheckoutService(
		log,
		service.Config{
			TaxRate:        cfg.Checkout.TaxRate,
			MinOrderAmount: cfg.Checkout.MinOrderAmount,
			MaxOrderAmount: cfg.Checkout.MaxOrderAmount,
			MaxCartItems:   cfg.Checkout.MaxCartItems,
		},
		stockLedger,
		charger,
		orderRepo,
		userDirectory,
		productCatalog,
		notifier,
		eventRecorder,
	)

	checkoutService, err := service.NewWorkerPoolCheckoutService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize checkout worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize checkout event handler
	checkoutEventHandler := consumer.NewCheckoutEventHandler(
		log,
		checkoutService,
		dlqProducer, // Pass the DLQ producer
	)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.CheckoutTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.CheckoutTopic, cfg.Kafka.ConsumerGroup, checkoutEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the checkout worker pool
	checkoutService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers
	if err = orderEventsProducer.Close(); err != nil {
		log.Error("Error closing order events Kafka producer", "error", err)
	}
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Checkout Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Checkout Processor shutdown completed with errors")
	} else {
		log.Info("Checkout Processor shutdown completed successfully")
	}
}

// seedDemoData loads a small catalog, a demo customer and starting stock so a
// development instance can process checkouts without external feeds.
func seedDemoData(stockLedger *ledger.Ledger, productCatalog *catalog.MemoryCatalog, userDirectory *user.MemoryDirectory) {
	products := []struct {
		record catalog.ProductRecord
		stock  int
	}{
		{catalog.ProductRecord{ID: "prod-mouse", Name: "Wireless Mouse", PriceCents: 2999, Active: true}, 120},
		{catalog.ProductRecord{ID: "prod-keyboard", Name: "Mechanical Keyboard", PriceCents: 8999, Active: true}, 40},
		{catalog.ProductRecord{ID: "prod-monitor", Name: "27in Monitor", PriceCents: 24999, Active: true}, 15},
		{catalog.ProductRecord{ID: "prod-dock", Name: "USB-C Dock", PriceCents: 12999, Active: true}, 25},
	}
	for _, p := range products {
		productCatalog.Put(p.record)
		stockLedger.SeedStock(p.record.ID, p.stock)
	}

	userDirectory.Put(user.UserRecord{
		ID:     uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Name:   "Demo Customer",
		Email:  "demo@example.com",
		Active: true,
	})
}
