package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("PAYMENTS_MODE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.StorageDriver != StorageMemory || cfg.IdempotencyBackend != IdempotencyMemory {
		t.Fatalf("unexpected drivers: %s / %s", cfg.StorageDriver, cfg.IdempotencyBackend)
	}
	if cfg.ServiceFeeRate.String() != "0.1" || cfg.TaxRate.String() != "0.12" {
		t.Fatalf("unexpected default rates: %s / %s", cfg.ServiceFeeRate, cfg.TaxRate)
	}
	if cfg.IdempotencyTTL != 168*time.Hour {
		t.Fatalf("idempotency ttl: got %s", cfg.IdempotencyTTL)
	}
	if len(cfg.RetryBackoff) != 3 {
		t.Fatalf("retry backoff: got %v", cfg.RetryBackoff)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("kafka brokers: got %v", cfg.KafkaBrokers)
	}
}

func TestFromEnvParsesValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("IDEMPOTENCY_BACKEND", "dynamodb")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_TOPIC_PREFIX", "dev.")
	t.Setenv("DEFAULT_SERVICE_FEE_RATE", "0.145")
	t.Setenv("S3_USE_SSL", "yes")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers: got %v", cfg.KafkaBrokers)
	}
	if cfg.Topic("bookings") != "dev.bookings" {
		t.Fatalf("topic: got %s", cfg.Topic("bookings"))
	}
	if cfg.ServiceFeeRate.String() != "0.145" {
		t.Fatalf("service fee: got %s", cfg.ServiceFeeRate)
	}
	if !cfg.S3UseSSL {
		t.Fatal("expected S3_USE_SSL to be true")
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "mongo without uri", env: map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": ""}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "negative rate", env: map[string]string{"DEFAULT_TAX_RATE": "-0.1"}},
		{name: "bad duration", env: map[string]string{"IDEMP_TTL": "soon"}},
		{name: "mercadopago without token", env: map[string]string{"PAYMENTS_MODE": "mercadopago", "MERCADOPAGO_ACCESS_TOKEN": ""}},
		{name: "mongo idempotency on memory storage", env: map[string]string{"STORAGE_DRIVER": "memory", "IDEMPOTENCY_BACKEND": "mongo"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
