package http

import (
	"context"
	"time"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/usecase"
	"gomarket/internal/shared/contextkeys"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// SessionMiddleware provides session-backed authentication middleware for Fiber
type SessionMiddleware struct {
	sessions   usecase.SessionManagerInterface
	cookieName string
}

// NewSessionMiddleware creates a new session authentication middleware
func NewSessionMiddleware(sessions usecase.SessionManagerInterface, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{
		sessions:   sessions,
		cookieName: cookieName,
	}
}

// CORS middleware with credentials enabled so the session cookie flows
func (m *SessionMiddleware) CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:3001",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})
}

// RateLimiter creates rate limiting middleware for credential endpoints
func (m *SessionMiddleware) RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               10,              // 10 requests
		Expiration:        1 * time.Minute, // per minute
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-Forwarded-For", c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func (m *SessionMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// Protect returns middleware that requires a valid session.
// Missing, unknown, or expired sessions all produce the same 401.
func (m *SessionMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		record := m.resolve(c)
		if record == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		m.setContext(c, record)
		return c.Next()
	}
}

// RequireRole returns middleware that requires one of the given roles.
// An authenticated caller with the wrong role gets 403, never 401.
func (m *SessionMiddleware) RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		record := recordFromLocals(c)
		if record == nil {
			// Standalone use without Protect() in front.
			record = m.resolve(c)
			if record == nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authentication required",
				})
			}
			m.setContext(c, record)
		}

		for _, role := range roles {
			if record.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

func (m *SessionMiddleware) resolve(c *fiber.Ctx) *model.SessionRecord {
	sessionID := c.Cookies(m.cookieName)
	if sessionID == "" {
		return nil
	}

	record, err := m.sessions.Resolve(c.Context(), sessionID)
	if err != nil || record == nil {
		return nil
	}
	return record
}

func (m *SessionMiddleware) setContext(c *fiber.Ctx, record *model.SessionRecord) {
	c.Locals(localsSessionKey, record)

	ctx := c.UserContext()
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, record.UserID)
	ctx = context.WithValue(ctx, contextkeys.UserEmailKey, record.Email)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, string(record.Role))
	ctx = context.WithValue(ctx, contextkeys.SessionIDKey, record.SessionID)
	if rid, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && rid != "" {
		ctx = context.WithValue(ctx, contextkeys.RequestIDKey, rid)
	}
	c.SetUserContext(ctx)
}

const localsSessionKey = "gomarket_session_record"

// recordFromLocals returns the session record set by Protect(), if any.
func recordFromLocals(c *fiber.Ctx) *model.SessionRecord {
	record, _ := c.Locals(localsSessionKey).(*model.SessionRecord)
	return record
}
