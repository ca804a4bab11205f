package di

import (
	"context"
	"fmt"
	"sync"

	"gomarket/internal/auth"
	"gomarket/internal/auth/config"
	"gomarket/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container wires the application modules and owns their lifecycle
type Container struct {
	mu sync.RWMutex

	AuthModule *auth.AuthModule

	MongoDB *mongo.Database
	Redis   *redis.Client

	AuthConfig *config.Config
	Logger     logger.Logger
}

// NewContainer creates an empty DI container
func NewContainer(log logger.Logger) *Container {
	return &Container{Logger: log}
}

// InitializeRedis connects a Redis client when the session backend needs one.
// Safe to skip entirely for the MongoDB backend.
func (c *Container) InitializeRedis(ctx context.Context, cfg *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	c.Redis = client
	return nil
}

// InitializeAuth initializes the session and account module
func (c *Container) InitializeAuth(mongoDB *mongo.Database, authConfig *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}

	c.MongoDB = mongoDB
	c.AuthConfig = authConfig

	authModule, err := auth.NewAuthModule(mongoDB, c.Redis, authConfig, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	return nil
}

// GetAuthModule returns the auth module instance
func (c *Container) GetAuthModule() *auth.AuthModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// HealthCheck pings every connected backend
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Close releases module resources. The MongoDB client is owned by the caller.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			return fmt.Errorf("failed to stop auth module: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}
	return nil
}
