package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gopitch/models"
	"gopitch/ports"

	apperrors "gopitch/internal/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// CreateUser inserts a new user, assigning its ID
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, is_active, created_at)
		VALUES (:id, :email, :username, :password_hash, :is_active, NOW())
	`, user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return apperrors.DuplicateEmail(user.Email)
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, username, password_hash, is_active, created_at
		FROM users
		WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load user by email")
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID
func (r *UserRepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, email, username, password_hash, is_active, created_at
		FROM users
		WHERE id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load user")
	}
	return &user, nil
}
