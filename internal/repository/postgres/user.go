package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MrValraven/greendash-core/internal/domain"
	"github.com/MrValraven/greendash-core/internal/repository"
	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool Querier
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool Querier) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user with the default role and returns the stored row.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash, role, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, email, password_hash, role, email_verified, created_at, updated_at`

	now := time.Now().UTC()

	var u domain.User
	err := r.pool.QueryRow(ctx, query, email, passwordHash, domain.RoleUser, false, now).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.EmailInUse(email)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, role, email_verified, created_at, updated_at
		FROM users
		WHERE id = $1`

	return r.scanUser(ctx, query, id)
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, role, email_verified, created_at, updated_at
		FROM users
		WHERE email = $1`

	return r.scanUser(ctx, query, email)
}

// Update applies a partial update and returns the post-update row.
func (r *UserRepository) Update(ctx context.Context, id int64, update repository.UserUpdate) (*domain.User, error) {
	if update.IsEmpty() {
		return nil, apperrors.NoUpdatesProvided()
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if update.Email != nil {
		args = append(args, *update.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if update.PasswordHash != nil {
		args = append(args, *update.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if update.EmailVerified != nil {
		args = append(args, *update.EmailVerified)
		sets = append(sets, fmt.Sprintf("email_verified = $%d", len(args)))
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING id, email, password_hash, role, email_verified, created_at, updated_at`,
		strings.Join(sets, ", "), len(args))

	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.UserNotFound()
		}
		if isUniqueViolation(err) {
			return nil, apperrors.EmailInUse(valueOrEmpty(update.Email))
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return &u, nil
}

// scanUser is a helper that executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.UserNotFound()
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
