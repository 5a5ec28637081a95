package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "POSTGRES_DSN", "REDIS_ADDR",
		"KAFKA_BROKERS", "SERVICE_NAME", "PAYMENT_GROUP", "PAYMENT_WORKERS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.HTTPAddr != ":8081" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.PaymentWorkers != 8 {
		t.Errorf("PaymentWorkers = %d", cfg.PaymentWorkers)
	}
	if len(cfg.KafkaBrokers) != 1 {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092 ,")
	t.Setenv("PAYMENT_WORKERS", "3")
	cfg := Load()
	if want := []string{"b1:9092", "b2:9092"}; !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	if cfg.PaymentWorkers != 3 {
		t.Errorf("PaymentWorkers = %d", cfg.PaymentWorkers)
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("PAYMENT_WORKERS", "zero")
	if cfg := Load(); cfg.PaymentWorkers != 8 {
		t.Errorf("PaymentWorkers = %d, want default 8", cfg.PaymentWorkers)
	}
}
