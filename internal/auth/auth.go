package auth

import (
	"fmt"

	authhttp "gomarket/internal/auth/adapter/http"
	"gomarket/internal/auth/adapter/persistence/mongodb"
	"gomarket/internal/auth/adapter/persistence/redisstore"
	"gomarket/internal/auth/cache"
	"gomarket/internal/auth/config"
	"gomarket/internal/auth/domain/repository"
	"gomarket/internal/auth/usecase"
	"gomarket/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthModule represents the complete session and account module
type AuthModule struct {
	store    repository.SessionStore
	cache    *cache.Cache
	sessions usecase.SessionManagerInterface
	accounts usecase.AccountsUsecaseInterface
	handler  *authhttp.SessionHTTPHandler
	config   *config.Config
}

// NewAuthModule creates a new session module instance. The Redis client may
// be nil when the configured backend is MongoDB.
func NewAuthModule(db *mongo.Database, redisClient *redis.Client, cfg *config.Config, log logger.Logger) (*AuthModule, error) {
	var store repository.SessionStore
	switch cfg.SessionBackend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis backend selected but no redis client configured")
		}
		store = redisstore.NewRedisSessionStore(redisClient, log)
	default:
		sessionStore, err := mongodb.NewMongoSessionStore(db, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		store = sessionStore
	}

	accountRepo, err := mongodb.NewMongoAccountRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create account repository: %w", err)
	}

	sessionCache := cache.New(cfg.CacheTTL, cfg.CacheSweepEvery, log)
	sessionCache.Start()

	sessions := usecase.NewSessionManager(store, sessionCache, cfg, log)
	accounts := usecase.NewAccountsUsecase(accountRepo, sessions, log)
	handler := authhttp.NewSessionHTTPHandler(sessions, accounts, cfg)

	return &AuthModule{
		store:    store,
		cache:    sessionCache,
		sessions: sessions,
		accounts: accounts,
		handler:  handler,
		config:   cfg,
	}, nil
}

// RegisterRoutes registers account and session routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	middleware := am.GetMiddleware()
	am.handler.SetupRoutesWithMiddleware(router, middleware)
}

// GetSessions returns the session manager for external access
func (am *AuthModule) GetSessions() usecase.SessionManagerInterface {
	return am.sessions
}

// GetAccounts returns the accounts usecase for external access
func (am *AuthModule) GetAccounts() usecase.AccountsUsecaseInterface {
	return am.accounts
}

// GetMiddleware returns the session middleware
func (am *AuthModule) GetMiddleware() *authhttp.SessionMiddleware {
	return authhttp.NewSessionMiddleware(am.sessions, am.config.CookieName)
}

// Stop halts the cache janitor when the module is shut down
func (am *AuthModule) Stop() error {
	am.cache.Stop()
	return nil
}
