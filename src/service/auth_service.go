package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"notes-app/src/domain"
)

// RegisterRequest 新規登録の入力
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginRequest ログインの入力
type LoginRequest struct {
	Email    string
	Password string
}

// AuthResult 認証成功時の結果
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService 認証サービスのインターフェース
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	// Authenticate トークンを検証してユーザーを返す。失敗は常にdomain.ErrUnauthorized
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// authService 認証サービスの実装
type authService struct {
	userRepo   domain.UserRepository
	jwtService JWTService
	bcryptCost int
}

// NewAuthService 認証サービスを作成
func NewAuthService(userRepo domain.UserRepository, jwtService JWTService, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
	}
}

// Register 新規ユーザー登録
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	// メールアドレスの重複チェック
	exists, err := s.userRepo.IsEmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	// ユーザー名の重複チェック
	exists, err = s.userRepo.IsUsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	// パスワードハッシュ化
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, domain.NewValidationError("password", "Password cannot be used")
	}

	now := time.Now()
	user, err := s.userRepo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login ユーザーログイン
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return s.issue(user)
}

// Authenticate トークンを検証
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
