package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Backend names accepted for SESSION_BACKEND.
const (
	BackendMongoDB = "mongodb"
	BackendRedis   = "redis"
)

// Config holds all configuration for the auth module.
type Config struct {
	// Storage configuration
	MongoDBURI     string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName   string `env:"DATABASE_NAME" envDefault:"gomarket"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"mongodb"` // "mongodb" or "redis"
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`

	// Session lifetime configuration
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"` // 7 days
	CacheTTL          time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`
	CacheSweepEvery   time.Duration `env:"SESSION_CACHE_SWEEP_INTERVAL" envDefault:"1m"`
	ActivityThreshold time.Duration `env:"SESSION_ACTIVITY_THRESHOLD" envDefault:"1h"`

	// Batch caps for administrative operations
	CleanupBatchSize int64         `env:"SESSION_CLEANUP_BATCH" envDefault:"500"`
	ListingCap       int64         `env:"SESSION_LISTING_CAP" envDefault:"1000"`
	ActiveWindow     time.Duration `env:"SESSION_ACTIVE_WINDOW" envDefault:"30m"`

	// CleanupSecret guards the externally triggered cleanup endpoint. Empty
	// means the endpoint is open (development only).
	CleanupSecret string `env:"CLEANUP_SECRET" envDefault:""`

	// Cookie configuration
	CookieName     string `env:"COOKIE_NAME" envDefault:"gm_session"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"` // set true in production
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"Lax"` // "Lax", "Strict", "None"
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the relationships between tunables.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendMongoDB, BackendRedis:
	default:
		return errors.New("session_backend must be 'mongodb' or 'redis'")
	}

	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.CacheTTL <= 0 || c.CacheSweepEvery <= 0 {
		return errors.New("cache ttl and sweep interval must be positive")
	}
	// The activity threshold gates sliding-renewal writes; a threshold at or
	// above the TTL would let active sessions expire between renewals.
	if c.ActivityThreshold <= 0 || c.ActivityThreshold >= c.SessionTTL {
		return errors.New("session_activity_threshold must be positive and smaller than session_ttl")
	}
	if c.CleanupBatchSize <= 0 || c.ListingCap <= 0 {
		return errors.New("batch caps must be positive")
	}

	switch strings.ToLower(c.CookieSameSite) {
	case "lax":
		c.CookieSameSite = "Lax"
	case "strict":
		c.CookieSameSite = "Strict"
	case "none":
		c.CookieSameSite = "None"
	default:
		return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}
	if c.CookieName == "" {
		return errors.New("cookie_name is required")
	}
	return nil
}

// CookieMaxAge is the session TTL expressed in seconds for the cookie header.
func (c *Config) CookieMaxAge() int {
	return int(c.SessionTTL.Seconds())
}
