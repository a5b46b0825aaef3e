package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
)

func newRefreshTokenTestFixture(t *testing.T) (*RefreshTokenRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewRefreshTokenRepository(mock)
	return repo, mock
}

func TestRefreshTokenRepository_Create_Success(t *testing.T) {
	repo, mock := newRefreshTokenTestFixture(t)
	defer mock.Close()

	expiresAt := time.Now().UTC().Add(24 * time.Hour)

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(int64(42), "hash-abc", expiresAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), 42, "hash-abc", expiresAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Get_Success(t *testing.T) {
	repo, mock := newRefreshTokenTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)
	expiresAt := now.Add(24 * time.Hour)

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE user_id = .+ AND token_hash = .+ AND expires_at >").
		WithArgs(int64(42), "hash-abc", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at"}).
			AddRow(int64(7), int64(42), "hash-abc", expiresAt, now))

	rt, err := repo.Get(context.Background(), 42, "hash-abc")
	require.NoError(t, err)
	assert.Equal(t, int64(42), rt.UserID)
	assert.Equal(t, "hash-abc", rt.TokenHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Get_NotFound(t *testing.T) {
	repo, mock := newRefreshTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens").
		WithArgs(int64(42), "hash-unknown", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), 42, "hash-unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Delete_Success(t *testing.T) {
	repo, mock := newRefreshTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash =").
		WithArgs("hash-abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "hash-abc")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Delete_MissingRowIsNotAnError(t *testing.T) {
	repo, mock := newRefreshTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash =").
		WithArgs("hash-gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "hash-gone")
	assert.NoError(t, err, "deleting an absent token keeps logout idempotent")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_DeleteByUserID(t *testing.T) {
	repo, mock := newRefreshTokenTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id =").
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err := repo.DeleteByUserID(context.Background(), 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
