package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"CART_KEY", "CART_STORAGE", "HTTP_PORT", "WRITE_TIMEOUT", "BREAKER_ENABLED", "KAFKA_BROKERS", "POSTGRES_PORT", "SQLITE_PATH"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "@GoMarketplace", cfg.CartKey)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, "gomarketplace.db", cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.True(t, cfg.Breaker)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 5432, cfg.PostgresPort)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CART_STORAGE", "Redis")
	t.Setenv("CART_KEY", "@Other")
	t.Setenv("WRITE_TIMEOUT", "250ms")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("POSTGRES_PORT", "6543")

	cfg := Load()

	assert.Equal(t, "redis", cfg.Storage)
	assert.Equal(t, "@Other", cfg.CartKey)
	assert.Equal(t, 250*time.Millisecond, cfg.WriteTimeout)
	assert.False(t, cfg.Breaker)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 6543, cfg.PostgresPort)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WRITE_TIMEOUT", "soon")
	t.Setenv("POSTGRES_PORT", "abc")
	t.Setenv("BREAKER_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.True(t, cfg.Breaker)
}
