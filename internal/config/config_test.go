package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME_CURRENCY", "MYR")
	t.Setenv("PENDING_TX_TTL", "")

	cfg := Load()

	assert.Equal(t, "MYR", cfg.HomeCurrency)
	assert.Equal(t, 30*time.Minute, cfg.PendingTxTTL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TARGET_CURRENCY", "SGD")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CONVERSION_TIMEOUT", "750ms")
	t.Setenv("DEBT_SOURCE", "postgres")

	cfg := Load()

	assert.Equal(t, "SGD", cfg.TargetCurrency)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 750*time.Millisecond, cfg.ConversionTimeout)
	assert.Equal(t, "postgres", cfg.DebtSource)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("HTTP_TIMEOUT", "-5s")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestIsDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	assert.True(t, Load().IsDevelopment())

	t.Setenv("APP_ENV", "staging")
	assert.False(t, Load().IsDevelopment())
}
