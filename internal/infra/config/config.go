package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	IdempotencyMemory   = "memory"
	IdempotencyMongo    = "mongo"
	IdempotencyDynamoDB = "dynamodb"

	PaymentsDemo        = "demo"
	PaymentsMercadoPago = "mercadopago"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	GRPCAddr           string
	StorageDriver      string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaListingsTopic string
	KafkaGroupID       string
	IdempotencyBackend string
	IdempotencyTTL     time.Duration
	DynamoEndpoint     string
	DynamoTable        string
	AWSRegion          string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	S3UseSSL           bool
	S3FixturesBucket   string
	ListingsFixtures   string
	DefaultCurrency    string
	ServiceFeeRate     decimal.Decimal
	TaxRate            decimal.Decimal
	PaymentsMode       string
	MercadoPago        MercadoPago
}

type MercadoPago struct {
	AccessToken   string
	PaymentMethod string
	PayerEmail    string
}

// Load reads an optional .env file and parses configuration from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses configuration from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:           getEnv("GRPC_ADDR", ":9090"),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "stayhub"),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaListingsTopic: getEnv("KAFKA_LISTINGS_TOPIC", "property.listings"),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "stayhub-listing-sync"),
		IdempotencyBackend: strings.ToLower(getEnv("IDEMPOTENCY_BACKEND", "")),
		DynamoEndpoint:     os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoTable:        getEnv("DYNAMODB_IDEMPOTENCY_TABLE", "stayhub-idempotency"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        getEnv("S3_SECRET_KEY", "minioadmin"),
		S3FixturesBucket:   os.Getenv("S3_FIXTURES_BUCKET"),
		ListingsFixtures:   os.Getenv("LISTINGS_FIXTURES"),
		DefaultCurrency:    strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
		PaymentsMode:       strings.ToLower(getEnv("PAYMENTS_MODE", PaymentsDemo)),
		MercadoPago: MercadoPago{
			AccessToken:   os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
			PaymentMethod: getEnv("MERCADOPAGO_PAYMENT_METHOD", "visa"),
			PayerEmail:    os.Getenv("MERCADOPAGO_PAYER_EMAIL"),
		},
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}

	idempotencyTTL, err := parseDurationEnv("IDEMP_TTL", 168*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = idempotencyTTL

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	useSSL, err := parseBoolEnv("S3_USE_SSL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.S3UseSSL = useSSL

	serviceFee, err := parseDecimalEnv("DEFAULT_SERVICE_FEE_RATE", decimal.RequireFromString("0.10"))
	if err != nil {
		return Config{}, err
	}
	cfg.ServiceFeeRate = serviceFee
	taxRate, err := parseDecimalEnv("DEFAULT_TAX_RATE", decimal.RequireFromString("0.12"))
	if err != nil {
		return Config{}, err
	}
	cfg.TaxRate = taxRate

	switch cfg.StorageDriver {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_DRIVER=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER: %s", cfg.StorageDriver)
	}
	if cfg.IdempotencyBackend == "" {
		cfg.IdempotencyBackend = cfg.StorageDriver
	}
	switch cfg.IdempotencyBackend {
	case IdempotencyMemory, IdempotencyDynamoDB:
	case IdempotencyMongo:
		if cfg.StorageDriver != StorageMongo {
			return Config{}, fmt.Errorf("IDEMPOTENCY_BACKEND=mongo requires STORAGE_DRIVER=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unsupported IDEMPOTENCY_BACKEND: %s", cfg.IdempotencyBackend)
	}
	switch cfg.PaymentsMode {
	case PaymentsDemo:
	case PaymentsMercadoPago:
		if cfg.MercadoPago.AccessToken == "" {
			return Config{}, fmt.Errorf("MERCADOPAGO_ACCESS_TOKEN is required when PAYMENTS_MODE=mercadopago")
		}
	default:
		return Config{}, fmt.Errorf("unsupported PAYMENTS_MODE: %s", cfg.PaymentsMode)
	}
	return cfg, nil
}

// Topic prefixes name with the configured topic prefix.
func (c Config) Topic(name string) string {
	return c.KafkaTopicPrefix + name
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

// parseDecimalEnv reads a non-negative rate. Rates keep their exact decimal form.
func parseDecimalEnv(key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s decimal: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s: must be non-negative", key)
	}
	return d, nil
}
