package repository

import (
	"context"

	"gomarket/internal/auth/domain/model"
)

// AccountRepository is the persistence port for marketplace accounts.
type AccountRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
