package repository

import (
	"context"
	"time"

	"github.com/MrValraven/greendash-core/internal/domain"
)

// UserUpdate is a partial update of a user record. Nil fields are left
// untouched. An update with no fields set is rejected by the store.
type UserUpdate struct {
	Email         *string
	PasswordHash  *string
	EmailVerified *bool
}

// IsEmpty reports whether no fields are set.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.PasswordHash == nil && u.EmailVerified == nil
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and returns the stored record with its
	// assigned id. A duplicate email yields an EmailInUse domain error.
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update applies a partial update and returns the post-update record.
	// An empty update yields a NoUpdatesProvided domain error.
	Update(ctx context.Context, id int64, update UserUpdate) (*domain.User, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence.
// Tokens are stored hashed; expired rows are filtered at read time and
// cleaned up by external housekeeping, not by this store.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash for the user.
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error

	// Get retrieves the unexpired refresh token row bound to the given
	// user and hash. A missing or expired row yields a not-found error.
	Get(ctx context.Context, userID int64, tokenHash string) (*domain.RefreshToken, error)

	// Delete removes a refresh token by its hash. Deleting a token that
	// does not exist is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes all refresh tokens for the given user.
	DeleteByUserID(ctx context.Context, userID int64) error
}
