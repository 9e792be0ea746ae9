// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// checkout limits, payment retry behavior, inventory reservations, database
// connections, message queues, and operational parameters.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., checkout rules,
// databases, message queues) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Checkout    CheckoutConfig
	Payment     PaymentConfig
	Inventory   InventoryConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// CheckoutConfig contains the business limits applied while validating an order
type CheckoutConfig struct {
	TaxRate        float64 // Fraction of the subtotal, e.g. 0.08
	MinOrderAmount int64   // Minimum order total in cents
	MaxOrderAmount int64   // Maximum order total in cents
	MaxCartItems   int     // Maximum distinct line items per order
}

// PaymentConfig contains payment gateway client configuration
type PaymentConfig struct {
	MaxRetries    int           // Retries after the first attempt for transient failures
	BackoffBase   time.Duration // First retry delay; doubles per subsequent retry
	AmountCeiling int64         // Largest chargeable amount in cents
	CallTimeout   time.Duration // Per-attempt gateway call timeout
}

// InventoryConfig contains stock ledger configuration
type InventoryConfig struct {
	ReservationTTL    time.Duration // How long a reservation holds stock before expiring
	MaxPerReservation int           // Largest quantity a single reservation may hold
	LowStockThreshold int           // Available quantity at or below which stock is reported low
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	CheckoutTopic     string
	OrderEventsTopic  string // Topic carrying order confirmation events
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Checkout config
	if c.Checkout.TaxRate < 0 || c.Checkout.TaxRate >= 1 {
		validationErrors = append(validationErrors, "CHECKOUT_TAX_RATE must be in [0, 1)")
	}
	if c.Checkout.MinOrderAmount < 0 {
		validationErrors = append(validationErrors, "CHECKOUT_MIN_ORDER_AMOUNT must not be negative")
	}
	if c.Checkout.MaxOrderAmount <= 0 {
		validationErrors = append(validationErrors, "CHECKOUT_MAX_ORDER_AMOUNT must be greater than 0")
	}
	if c.Checkout.MaxOrderAmount > 0 && c.Checkout.MaxOrderAmount <= c.Checkout.MinOrderAmount {
		validationErrors = append(validationErrors, "CHECKOUT_MAX_ORDER_AMOUNT must exceed CHECKOUT_MIN_ORDER_AMOUNT")
	}
	if c.Checkout.MaxCartItems <= 0 {
		validationErrors = append(validationErrors, "CHECKOUT_MAX_CART_ITEMS must be greater than 0")
	}

	// Validate Payment config
	if c.Payment.MaxRetries < 0 {
		validationErrors = append(validationErrors, "PAYMENT_MAX_RETRIES must not be negative")
	}
	if c.Payment.BackoffBase <= 0 {
		validationErrors = append(validationErrors, "PAYMENT_BACKOFF_BASE must be greater than 0")
	}
	if c.Payment.AmountCeiling <= 0 {
		validationErrors = append(validationErrors, "PAYMENT_AMOUNT_CEILING must be greater than 0")
	}
	if c.Payment.CallTimeout <= 0 {
		validationErrors = append(validationErrors, "PAYMENT_CALL_TIMEOUT must be greater than 0")
	}

	// Validate Inventory config
	if c.Inventory.ReservationTTL <= 0 {
		validationErrors = append(validationErrors, "INVENTORY_RESERVATION_TTL must be greater than 0")
	}
	if c.Inventory.MaxPerReservation <= 0 {
		validationErrors = append(validationErrors, "INVENTORY_MAX_PER_RESERVATION must be greater than 0")
	}
	if c.Inventory.LowStockThreshold < 0 {
		validationErrors = append(validationErrors, "INVENTORY_LOW_STOCK_THRESHOLD must not be negative")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.CheckoutTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_CHECKOUT_TOPIC is required")
	}
	if c.Kafka.OrderEventsTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_ORDER_EVENTS_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
