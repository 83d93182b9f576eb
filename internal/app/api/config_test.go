package api

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX", "TEMPORAL_DISABLED",
		"SPEI_VALIDATION_THRESHOLD", "QUOTE_SESSION_TTL_MINUTES", "SEED_DEMO_DATA",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "reseller-ops", cfg.KafkaTopicPrefix)
	require.True(t, cfg.SPEIValidationThreshold.Equal(decimal.NewFromInt(200000)))
	require.Equal(t, 120*time.Minute, cfg.QuoteSessionTTL)
	require.True(t, cfg.SeedDemoData)
	require.False(t, cfg.TemporalDisabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SPEI_VALIDATION_THRESHOLD", "150000.50")
	t.Setenv("QUOTE_SESSION_TTL_MINUTES", "15")
	t.Setenv("SEED_DEMO_DATA", "false")
	t.Setenv("TEMPORAL_DISABLED", "1")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "150000.5", cfg.SPEIValidationThreshold.String())
	require.Equal(t, 15*time.Minute, cfg.QuoteSessionTTL)
	require.False(t, cfg.SeedDemoData)
	require.True(t, cfg.TemporalDisabled)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SPEI_VALIDATION_THRESHOLD": "lots",
		"QUOTE_SESSION_TTL_MINUTES": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
