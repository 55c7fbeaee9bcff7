package repository

import (
	"context"
	"database/sql"
	"errors"

	"notes-app/src/database"
	"notes-app/src/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	userColumns = "id, username, email, password_hash, created_at, updated_at"

	pqUniqueViolation = "23505"
)

// PostgresUserRepository implements domain.UserRepository on PostgreSQL
type PostgresUserRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

var _ domain.UserRepository = (*PostgresUserRepository)(nil)

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *database.DB, logger *logrus.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create ユーザーを作成
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	created := *user
	created.ID = uuid.NewString()

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		created.ID, created.Username, created.Email, created.PasswordHash,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			if pqErr.Constraint == "users_username_key" {
				return nil, domain.ErrUsernameTaken
			}
			return nil, domain.ErrEmailTaken
		}
		r.logger.WithError(err).Error("ユーザーの作成に失敗")
		return nil, domain.NewTransientError("create user", err)
	}

	return &created, nil
}

// GetByID IDでユーザーを取得
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail メールアドレスでユーザーを取得
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

// column is always one of the literals above
func (r *PostgresUserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewTransientError("get user", err)
	}
	return &user, nil
}

// IsEmailExists メールアドレスの存在チェック
func (r *PostgresUserRepository) IsEmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// IsUsernameExists ユーザー名の存在チェック
func (r *PostgresUserRepository) IsUsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *PostgresUserRepository) exists(ctx context.Context, query, value string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, domain.NewTransientError("check user", err)
	}
	return exists, nil
}
