package testutil

import (
	"time"

	"gomarket/internal/auth/domain/model"

	"golang.org/x/crypto/bcrypt"
)

// UserFixture provides test data for the User model
type UserFixture struct{}

// NewUserFixture creates a new UserFixture instance
func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

// ValidUser returns a valid user for testing
func (f *UserFixture) ValidUser() *model.User {
	return f.UserWithPassword("test@example.com", "password123")
}

// UserWithEmail returns a user with a specific email
func (f *UserFixture) UserWithEmail(email string) *model.User {
	return f.UserWithPassword(email, "password123")
}

// UserWithPassword returns a user with a specific password
func (f *UserFixture) UserWithPassword(email, password string) *model.User {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &model.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// SessionFixture provides test data for session records
type SessionFixture struct{}

// NewSessionFixture creates a new SessionFixture instance
func NewSessionFixture() *SessionFixture {
	return &SessionFixture{}
}

// ValidSession returns a valid session record for testing
func (f *SessionFixture) ValidSession() *model.SessionRecord {
	return f.SessionForUser("test-user-id-123")
}

// SessionForUser returns a session record for a specific user
func (f *SessionFixture) SessionForUser(userID string) *model.SessionRecord {
	now := time.Now().UnixMilli()
	return &model.SessionRecord{
		SessionID:    "session-for-" + userID,
		UserID:       userID,
		Email:        userID + "@example.com",
		Role:         model.RoleUser,
		CreatedAt:    now,
		ExpiresAt:    now + (24 * time.Hour).Milliseconds(),
		LastActivity: now,
	}
}

// ExpiredSession returns a session record that expired an hour ago
func (f *SessionFixture) ExpiredSession() *model.SessionRecord {
	now := time.Now().UnixMilli()
	return &model.SessionRecord{
		SessionID:    "expired-session-id",
		UserID:       "test-user-id",
		Email:        "test@example.com",
		Role:         model.RoleUser,
		CreatedAt:    now - (2 * time.Hour).Milliseconds(),
		ExpiresAt:    now - time.Hour.Milliseconds(),
		LastActivity: now - (2 * time.Hour).Milliseconds(),
	}
}

// TestData provides all fixtures
type TestData struct {
	Users    *UserFixture
	Sessions *SessionFixture
}

// NewTestData creates a new TestData instance with all fixtures
func NewTestData() *TestData {
	return &TestData{
		Users:    NewUserFixture(),
		Sessions: NewSessionFixture(),
	}
}

// Common test emails for validation testing
var (
	ValidEmails = []string{
		"test@example.com",
		"user.name@domain.co.uk",
		"user+tag@example.org",
		"firstname.lastname@company.com",
	}

	InvalidEmails = []string{
		"",
		"invalid-email",
		"@example.com",
		"test@",
		"test.example.com",
		"test space@example.com",
	}
)
