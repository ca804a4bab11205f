package http_test

import (
	"context"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/auth/usecase"

	"github.com/stretchr/testify/mock"
)

// MockSessionManager is a mock implementation of usecase.SessionManagerInterface
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) Create(ctx context.Context, userID, email, role string) (*model.SessionRecord, error) {
	args := m.Called(ctx, userID, email, role)
	if record := args.Get(0); record != nil {
		return record.(*model.SessionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) Resolve(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	args := m.Called(ctx, sessionID)
	if record := args.Get(0); record != nil {
		return record.(*model.SessionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) ResolveCached(sessionID string) *model.SessionRecord {
	args := m.Called(sessionID)
	if record := args.Get(0); record != nil {
		return record.(*model.SessionRecord)
	}
	return nil
}

func (m *MockSessionManager) Update(ctx context.Context, sessionID string, fields map[string]string) (bool, error) {
	args := m.Called(ctx, sessionID, fields)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionManager) Destroy(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionManager) DestroyAllForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionManager) ListActive(ctx context.Context) ([]*model.SessionRecord, error) {
	args := m.Called(ctx)
	if records := args.Get(0); records != nil {
		return records.([]*model.SessionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) Stats(ctx context.Context) (*usecase.SessionStats, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(*usecase.SessionStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionManager) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountsUsecase is a mock implementation of usecase.AccountsUsecaseInterface
type MockAccountsUsecase struct {
	mock.Mock
}

func (m *MockAccountsUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if user := args.Get(0); user != nil {
		return user.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountsUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if user := args.Get(0); user != nil {
		return user.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountsUsecase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (int64, error) {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountsUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}
