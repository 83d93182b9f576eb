package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"

	ordersapp "github.com/Apurer/reseller-ops-api/internal/domains/orders/application"
)

const defaultQuoteSessionTTL = 120 * time.Minute

// Config carries environment-driven settings shared by the API, the worker and the import tool.
type Config struct {
	Port                    string
	PostgresDSN             string
	RedisAddr               string
	KafkaBrokers            []string
	KafkaTopicPrefix        string
	TemporalAddress         string
	TemporalNamespace       string
	TemporalDisabled        bool
	SPEIValidationThreshold decimal.Decimal
	QuoteSessionTTL         time.Duration
	SeedDemoData            bool
}

// LoadConfig reads a .env file when present, then environment variables, applies defaults, and
// validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Port:                    envDefault("PORT", "8080"),
		PostgresDSN:             strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:               strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:            splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix:        envDefault("KAFKA_TOPIC_PREFIX", "reseller-ops"),
		TemporalAddress:         envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:       envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:        isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		SPEIValidationThreshold: ordersapp.DefaultValidationThreshold,
		QuoteSessionTTL:         defaultQuoteSessionTTL,
		SeedDemoData:            true,
	}
	if raw := strings.TrimSpace(os.Getenv("SPEI_VALIDATION_THRESHOLD")); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil || threshold.IsNegative() {
			return Config{}, fmt.Errorf("SPEI_VALIDATION_THRESHOLD must be a non-negative decimal")
		}
		cfg.SPEIValidationThreshold = threshold
	}
	if raw := strings.TrimSpace(os.Getenv("QUOTE_SESSION_TTL_MINUTES")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("QUOTE_SESSION_TTL_MINUTES must be a positive integer")
		}
		cfg.QuoteSessionTTL = time.Duration(minutes) * time.Minute
	}
	if raw := strings.TrimSpace(os.Getenv("SEED_DEMO_DATA")); raw != "" {
		cfg.SeedDemoData = isTruthy(raw)
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
