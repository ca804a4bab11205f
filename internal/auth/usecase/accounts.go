package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/domain/repository"
	apperrors "gomarket/internal/shared/errors"
	"gomarket/internal/shared/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// Password validation constants
const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// AccountsUsecaseInterface defines the credential boundary that produces
// sessions. A successful credential check is the only producer of new
// session records.
type AccountsUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (int64, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Seller   bool   `json:"seller,omitempty"` // opt-in seller account
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountsUsecase implements account registration and credential verification.
type AccountsUsecase struct {
	repo     repository.AccountRepository
	sessions SessionManagerInterface
	log      logger.Logger
}

// NewAccountsUsecase creates a new instance of AccountsUsecase.
func NewAccountsUsecase(
	repo repository.AccountRepository,
	sessions SessionManagerInterface,
	log logger.Logger,
) *AccountsUsecase {
	return &AccountsUsecase{
		repo:     repo,
		sessions: sessions,
		log:      log.WithComponent("accounts"),
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}
	return nil
}

// Register creates a new marketplace account. Admin accounts are never
// self-assignable; the highest role reachable here is seller.
func (uc *AccountsUsecase) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !model.ValidEmail(email) {
		return nil, ErrInvalidEmailFormat
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleUser
	if req.Seller {
		role = model.RoleSeller
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uc.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and returns the account on success. It does not
// create the session itself; the HTTP boundary does, so that cookie issuance
// stays in one place.
func (uc *AccountsUsecase) Login(ctx context.Context, req LoginRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !model.ValidEmail(email) {
		return nil, ErrInvalidCredentials
	}

	user, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword rotates the password hash and revokes every session the user
// holds, returning the number of sessions destroyed.
func (uc *AccountsUsecase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (int64, error) {
	if err := validatePassword(newPassword); err != nil {
		return 0, err
	}

	user, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, apperrors.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return 0, ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := uc.repo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return 0, fmt.Errorf("failed to update password: %w", err)
	}

	revoked, err := uc.sessions.DestroyAllForUser(ctx, userID)
	if err != nil {
		// The password did rotate; surface the partial failure rather than
		// pretending the global logout happened.
		return revoked, fmt.Errorf("password changed but session revocation failed: %w", err)
	}

	uc.log.Infof("password changed for user %s, %d sessions revoked", userID, revoked)
	return revoked, nil
}

// GetUserByID retrieves an account by ID with the password hash cleared.
func (uc *AccountsUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	user, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

// Ensure AccountsUsecase implements AccountsUsecaseInterface
var _ AccountsUsecaseInterface = (*AccountsUsecase)(nil)
