package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MrValraven/greendash-core/internal/domain"
	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
)

// RefreshTokenRepository implements repository.RefreshTokenRepository using
// PostgreSQL. One row per session; expired rows are filtered at read time.
type RefreshTokenRepository struct {
	pool Querier
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(pool Querier) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// Create stores a new refresh token hash for the user.
func (r *RefreshTokenRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, userID, tokenHash, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// Get retrieves the unexpired refresh token row bound to the given user and hash.
func (r *RefreshTokenRepository) Get(ctx context.Context, userID int64, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND token_hash = $2 AND expires_at > $3`

	var rt domain.RefreshToken
	err := r.pool.QueryRow(ctx, query, userID, tokenHash, time.Now().UTC()).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.TokenHash,
		&rt.ExpiresAt,
		&rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &rt, nil
}

// Delete removes a refresh token by its hash. A missing row is not an error,
// so logout stays idempotent.
func (r *RefreshTokenRepository) Delete(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM refresh_tokens WHERE token_hash = $1`

	_, err := r.pool.Exec(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}

// DeleteByUserID removes all refresh tokens for the given user.
func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete refresh tokens by user: %w", err)
	}

	return nil
}
