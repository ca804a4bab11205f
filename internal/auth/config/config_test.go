package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := defaultConfig(t)

	assert.Equal(t, BackendMongoDB, cfg.SessionBackend)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.CacheSweepEvery)
	assert.Equal(t, time.Hour, cfg.ActivityThreshold)
	assert.Equal(t, int64(500), cfg.CleanupBatchSize)
	assert.Equal(t, int64(1000), cfg.ListingCap)
	assert.Equal(t, 30*time.Minute, cfg.ActiveWindow)
	assert.Equal(t, "gm_session", cfg.CookieName)
	assert.Equal(t, "/", cfg.CookiePath)
	assert.True(t, cfg.CookieHTTPOnly)
	assert.Equal(t, "Lax", cfg.CookieSameSite)
	assert.Equal(t, 604800, cfg.CookieMaxAge())
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.SessionBackend = "dynamo"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ThresholdMustBeSmallerThanTTL(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.ActivityThreshold = cfg.SessionTTL
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig(t)
	cfg.ActivityThreshold = cfg.SessionTTL + time.Hour
	assert.Error(t, cfg.Validate())
}

func TestValidate_NormalizesSameSite(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.CookieSameSite = "strict"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Strict", cfg.CookieSameSite)

	cfg.CookieSameSite = "NONE"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "None", cfg.CookieSameSite)

	cfg.CookieSameSite = "weird"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveCaps(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.CleanupBatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig(t)
	cfg.ListingCap = -1
	assert.Error(t, cfg.Validate())
}
