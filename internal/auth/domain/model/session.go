package model

import (
	"strings"

	apperrors "gomarket/internal/shared/errors"
)

// Role is the authorization level bound to a session. The set is closed:
// values outside it are rejected at session creation, never coerced downstream.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole normalizes and validates a role token.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleSeller:
		return RoleSeller, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", apperrors.ErrInvalidRole
	}
}

// IsValid reports whether the role belongs to the closed set.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleSeller || r == RoleAdmin
}

// SessionRecord binds an opaque session identifier to an authenticated
// principal. All timestamps are epoch milliseconds.
type SessionRecord struct {
	SessionID    string `json:"sessionId" bson:"session_id"`
	UserID       string `json:"userId" bson:"user_id"`
	Email        string `json:"email" bson:"email"`
	Role         Role   `json:"role" bson:"role"`
	CreatedAt    int64  `json:"createdAt" bson:"created_at"`
	ExpiresAt    int64  `json:"expiresAt" bson:"expires_at"`
	LastActivity int64  `json:"lastActivity" bson:"last_activity"`
}

// Expired reports whether the record is logically dead at the given instant.
func (s *SessionRecord) Expired(nowMillis int64) bool {
	return nowMillis >= s.ExpiresAt
}

// Clone returns an independent copy of the record.
func (s *SessionRecord) Clone() *SessionRecord {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Validate checks the record invariants at the store boundary.
func (s *SessionRecord) Validate() error {
	if s.SessionID == "" {
		return apperrors.NewValidationError("sessionId is required")
	}
	if s.UserID == "" {
		return apperrors.NewValidationError("userId is required")
	}
	if !s.Role.IsValid() {
		return apperrors.ErrInvalidRole
	}
	if s.ExpiresAt <= s.CreatedAt {
		return apperrors.NewValidationError("expiresAt must be after createdAt")
	}
	return nil
}
