package http

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"gomarket/internal/auth/config"
	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/usecase"
	apperrors "gomarket/internal/shared/errors"
	"gomarket/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// SessionHTTPHandler handles HTTP requests for accounts and sessions
type SessionHTTPHandler struct {
	sessions      usecase.SessionManagerInterface
	accounts      usecase.AccountsUsecaseInterface
	cleanupSecret string

	cookieName     string
	cookiePath     string
	cookieDomain   string
	cookieMaxAge   int
	cookieSecure   bool
	cookieHTTPOnly bool
	cookieSameSite string
}

// NewSessionHTTPHandler creates a new session HTTP handler
func NewSessionHTTPHandler(
	sessions usecase.SessionManagerInterface,
	accounts usecase.AccountsUsecaseInterface,
	cfg *config.Config,
) *SessionHTTPHandler {
	return &SessionHTTPHandler{
		sessions:       sessions,
		accounts:       accounts,
		cleanupSecret:  cfg.CleanupSecret,
		cookieName:     cfg.CookieName,
		cookiePath:     cfg.CookiePath,
		cookieDomain:   cfg.CookieDomain,
		cookieMaxAge:   cfg.CookieMaxAge(),
		cookieSecure:   cfg.CookieSecure,
		cookieHTTPOnly: cfg.CookieHTTPOnly,
		cookieSameSite: cfg.CookieSameSite,
	}
}

// SetupRoutesWithMiddleware sets up account and session routes with middleware
func (h *SessionHTTPHandler) SetupRoutesWithMiddleware(router fiber.Router, middleware *SessionMiddleware) {
	router.Use(middleware.RequestID())

	// Public routes (no authentication required)
	router.Post("/register", h.Register)
	router.Post("/login", middleware.RateLimiter(), h.Login)
	router.Post("/logout", h.Logout)
	router.Get("/session/peek", h.PeekSession)

	// Internal routes (secret-guarded, for schedulers). Registered before the
	// protected group so its "/" prefix middleware does not capture them.
	router.Post("/internal/cleanup", h.Cleanup)

	// Protected routes (valid session required)
	protected := router.Group("/", middleware.Protect())
	protected.Get("/me", h.GetCurrentUser)
	protected.Patch("/session", h.UpdateSession)
	protected.Post("/change-password", h.ChangePassword)

	// Admin routes (session administration)
	admin := router.Group("/admin", middleware.Protect(), middleware.RequireRole(model.RoleAdmin))
	admin.Get("/sessions", h.ListSessions)
	admin.Get("/sessions/stats", h.SessionStats)
	admin.Delete("/sessions/:sessionId", h.RevokeSession)
	admin.Delete("/users/:userId/sessions", h.RevokeUserSessions)
}

// Register handles account registration and starts a session
func (h *SessionHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.accounts.Register(c.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already registered",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	record, err := h.sessions.Create(c.Context(), user.ID, user.Email, string(user.Role))
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Could not start session",
		})
	}

	h.setCookie(c, record.SessionID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": user,
	})
}

// Login verifies credentials and starts a fresh session
func (h *SessionHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.accounts.Login(c.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Login temporarily unavailable",
		})
	}

	record, err := h.sessions.Create(c.Context(), user.ID, user.Email, string(user.Role))
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Could not start session",
		})
	}

	h.setCookie(c, record.SessionID)

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// Logout destroys the caller's session. Logging out without a session, or
// with one that is already gone, still succeeds and clears the cookie.
func (h *SessionHTTPHandler) Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(h.cookieName)
	if sessionID != "" {
		if err := h.sessions.Destroy(c.Context(), sessionID); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Could not end session",
			})
		}
	}

	h.clearCookie(c)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// PeekSession answers from the in-process cache only. It never touches the
// durable store, so a cache miss reads as anonymous even when a valid
// session exists.
func (h *SessionHTTPHandler) PeekSession(c *fiber.Ctx) error {
	sessionID := c.Cookies(h.cookieName)
	if sessionID == "" {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	record := h.sessions.ResolveCached(sessionID)
	if record == nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"userId":        record.UserID,
		"email":         record.Email,
		"role":          record.Role,
	})
}

// GetCurrentUser returns the caller's session view
func (h *SessionHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	record := recordFromLocals(c)
	if record == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	return c.JSON(record)
}

// UpdateSession applies a partial update to the caller's session
func (h *SessionHTTPHandler) UpdateSession(c *fiber.Ctx) error {
	record := recordFromLocals(c)
	if record == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var fields map[string]string
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := h.sessions.Update(c.Context(), record.SessionID, fields)
	if err != nil {
		if apperrors.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Could not update session",
		})
	}
	if !updated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Session updated",
	})
}

// ChangePassword rotates the caller's password and revokes all their sessions
func (h *SessionHTTPHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	revoked, err := h.accounts.ChangePassword(c.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.clearCookie(c)

	return c.JSON(fiber.Map{
		"message":         "Password changed successfully",
		"sessionsRevoked": revoked,
	})
}

// ListSessions lists non-expired sessions (admin only)
func (h *SessionHTTPHandler) ListSessions(c *fiber.Ctx) error {
	records, err := h.sessions.ListActive(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Could not list sessions",
		})
	}

	return c.JSON(fiber.Map{
		"sessions": records,
		"total":    len(records),
	})
}

// SessionStats returns aggregate session counts (admin only)
func (h *SessionHTTPHandler) SessionStats(c *fiber.Ctx) error {
	stats, err := h.sessions.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Could not compute session stats",
		})
	}

	return c.JSON(stats)
}

// RevokeSession destroys a specific session (admin only)
func (h *SessionHTTPHandler) RevokeSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID required",
		})
	}

	if err := h.sessions.Destroy(c.Context(), sessionID); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Could not revoke session",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Session revoked",
	})
}

// RevokeUserSessions destroys every session of a user (admin only)
func (h *SessionHTTPHandler) RevokeUserSessions(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User ID required",
		})
	}

	revoked, err := h.sessions.DestroyAllForUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Could not revoke sessions",
		})
	}

	return c.JSON(fiber.Map{
		"revoked": revoked,
	})
}

// Cleanup removes one batch of expired sessions. Guarded by a shared secret
// so only internal schedulers can trigger it.
func (h *SessionHTTPHandler) Cleanup(c *fiber.Ctx) error {
	if !h.cleanupAuthorized(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	deleted, err := h.sessions.CleanupExpired(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Cleanup failed",
		})
	}

	return c.JSON(fiber.Map{
		"deleted": deleted,
	})
}

// cleanupAuthorized checks the shared-secret bearer credential. An empty
// configured secret leaves the endpoint open, which is intended for
// development setups only.
func (h *SessionHTTPHandler) cleanupAuthorized(c *fiber.Ctx) bool {
	if h.cleanupSecret == "" {
		return true
	}
	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cleanupSecret)) == 1
}

// Helper methods

func (h *SessionHTTPHandler) setCookie(c *fiber.Ctx, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    sessionID,
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   h.cookieMaxAge,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		Expires:  time.Now().Add(time.Duration(h.cookieMaxAge) * time.Second),
	})
}

func (h *SessionHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
