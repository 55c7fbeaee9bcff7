package service_test

import (
	"context"
	"errors"
	"testing"

	"notes-app/src/domain"
	"notes-app/src/infrastructure/repository"
	"notes-app/src/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService() (service.AuthService, *repository.MemoryUserRepository) {
	repo := repository.NewMemoryUserRepository()
	return service.NewAuthService(repo, service.NewJWTService(testAuthConfig()), 4), repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, service.RegisterRequest{
		Username: " alice ",
		Email:    " Alice@Example.com ",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, "alice@example.com", registered.User.Email)

	stored, err := repo.GetByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	loggedIn, err := svc.Login(ctx, service.LoginRequest{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	user, err := svc.Authenticate(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, service.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = svc.Register(ctx, service.RegisterRequest{Username: "alice", Email: "bob@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestAuthService_Failures(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"未登録のメール", func() error {
			_, err := svc.Login(ctx, service.LoginRequest{Email: "nobody@example.com", Password: "password123"})
			return err
		}},
		{"パスワード誤り", func() error {
			_, err := svc.Login(ctx, service.LoginRequest{Email: "alice@example.com", Password: "wrong"})
			return err
		}},
		{"不正なトークン", func() error {
			_, err := svc.Authenticate(ctx, "garbage")
			return err
		}},
		{"削除されたユーザーのトークン", func() error {
			token, err := service.NewJWTService(testAuthConfig()).GenerateAccessToken("ghost")
			require.NoError(t, err)
			_, err = svc.Authenticate(ctx, token)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), domain.ErrUnauthorized)
		})
	}
}

// MockUserRepository は domain.UserRepository のモック実装
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) IsEmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) IsUsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_StorageFailure(t *testing.T) {
	repo := new(MockUserRepository)
	svc := service.NewAuthService(repo, service.NewJWTService(testAuthConfig()), 4)
	transient := domain.NewTransientError("get user", errors.New("db down"))

	repo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, transient)

	_, err := svc.Login(context.Background(), service.LoginRequest{Email: "alice@example.com", Password: "x"})
	assert.True(t, domain.IsTransient(err))
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}
