package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrValraven/greendash-core/internal/auth"
	"github.com/MrValraven/greendash-core/internal/domain"
	"github.com/MrValraven/greendash-core/internal/notify"
	"github.com/MrValraven/greendash-core/internal/repository"
	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
)

// EventPublisher publishes user lifecycle events to the message bus.
// Satisfied by event.Producer.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserUpdated(ctx context.Context, user *domain.User) error
}

// Options holds policy switches for the auth service.
type Options struct {
	// RequireVerifiedEmail gates login on a verified email address.
	// Off by default: verification is not a login gate.
	RequireVerifiedEmail bool
}

// AuthService implements the session and account lifecycle: registration,
// verification, login, token refresh, logout, password reset, and account
// edits. Each operation is a short sequence of store reads and writes over a
// single user's data; the service holds no mutable state of its own and is
// safe for concurrent use.
type AuthService struct {
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	tokens        *auth.TokenManager
	notifier      notify.Notifier
	producer      EventPublisher
	logger        *slog.Logger
	opts          Options
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	tokens *auth.TokenManager,
	notifier notify.Notifier,
	producer EventPublisher,
	logger *slog.Logger,
	opts Options,
) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		notifier:      notifier,
		producer:      producer,
		logger:        logger,
		opts:          opts,
	}
}

// Register creates a new unverified account and sends the verification email.
// A notifier failure does not roll back the created user; it is logged and
// the caller still receives the account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	// Pre-check is a convenience; the store's unique constraint is the
	// real enforcement point for concurrent registrations.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.EmailInUse(email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	verificationToken, err := s.tokens.Sign(user.ID, auth.PurposeVerifyEmail)
	if err != nil {
		return nil, fmt.Errorf("sign verification token: %w", err)
	}

	if err := s.notifier.Send(ctx, user.Email, notify.CategoryEmailVerification, notify.Payload{Token: verificationToken}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// VerifyEmail marks the token's user as verified. Verifying an already
// verified account is rejected, not silently accepted.
func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) error {
	userID, err := s.tokens.Verify(verificationToken, auth.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.EmailVerified {
		return apperrors.EmailAlreadyVerified()
	}

	verified := true
	if _, err := s.users.Update(ctx, user.ID, repository.UserUpdate{EmailVerified: &verified}); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	s.logger.InfoContext(ctx, "email verified",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// Login authenticates a user and opens a new session. Each login stores its
// own refresh token row; existing sessions are left untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	if s.opts.RequireVerifiedEmail && !user.EmailVerified {
		return nil, apperrors.Unauthorized("email not verified")
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
	)

	return pair, nil
}

// RefreshAccessToken exchanges a stored refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Verify(refreshToken, auth.PurposeRefresh)
	if err != nil {
		return "", err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}

	// A signed token that is absent from the store is either forged or
	// previously revoked; both present as invalid.
	if _, err := s.refreshTokens.Get(ctx, userID, hashToken(refreshToken)); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.InvalidRefreshToken()
		}
		return "", fmt.Errorf("lookup refresh token: %w", err)
	}

	accessToken, err := s.tokens.Sign(userID, auth.PurposeAccess)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return accessToken, nil
}

// Logout revokes the presented refresh token. It is idempotent: an unknown,
// expired, or already-revoked token still logs out cleanly.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.refreshTokens.Delete(ctx, hashToken(refreshToken)); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}

// RequestPasswordReset issues a reset token and mails it to the account.
// The transport layer is responsible for answering uniformly whether or not
// the email exists; this method still reports the distinction.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.tokens.Sign(user.ID, auth.PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("sign password reset token: %w", err)
	}

	if err := s.notifier.Send(ctx, user.Email, notify.CategoryPasswordReset, notify.Payload{Token: resetToken}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset email",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// ResetPassword sets a new password for the token's user. The token proves
// authorization; the old password is not required. All existing sessions are
// revoked so a stolen session does not survive the reset.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.tokens.Verify(resetToken, auth.PurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if _, err := s.users.Update(ctx, user.ID, repository.UserUpdate{PasswordHash: &passwordHash}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.refreshTokens.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions after password reset",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// UpdateEmail changes the account's email address after re-authenticating
// with the current password. The change notification goes to the previous
// address.
func (s *AuthService) UpdateEmail(ctx context.Context, userID int64, newEmail, currentPassword string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !auth.VerifyPassword(currentPassword, user.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	if newEmail == user.Email {
		return nil, apperrors.SameValue("email")
	}

	// Snapshot pre-check; the unique constraint settles concurrent edits.
	if _, err := s.users.GetByEmail(ctx, newEmail); err == nil {
		return nil, apperrors.EmailInUse(newEmail)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	previousEmail := user.Email
	updated, err := s.users.Update(ctx, user.ID, repository.UserUpdate{Email: &newEmail})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Send(ctx, previousEmail, notify.CategoryEmailChanged, notify.Payload{NewValue: newEmail}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send email change notification",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishUserUpdated(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "email updated",
		slog.Int64("user_id", user.ID),
	)

	return updated, nil
}

// UpdatePassword changes the account's password after re-authenticating with
// the current one. A new password identical to the old is rejected.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, newPassword, currentPassword string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !auth.VerifyPassword(currentPassword, user.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	if auth.VerifyPassword(newPassword, user.PasswordHash) {
		return nil, apperrors.SameValue("password")
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash new password: %w", err)
	}

	updated, err := s.users.Update(ctx, user.ID, repository.UserUpdate{PasswordHash: &passwordHash})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Send(ctx, user.Email, notify.CategoryPasswordChanged, notify.Payload{}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password change notification",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password updated",
		slog.Int64("user_id", user.ID),
	)

	return updated, nil
}

// GetCurrentUser returns the public projection of the token's user.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// issueTokenPair mints an access/refresh pair and stores the refresh token
// hash as a new session row.
func (s *AuthService) issueTokenPair(ctx context.Context, userID int64) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.Sign(userID, auth.PurposeAccess)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.tokens.Sign(userID, auth.PurposeRefresh)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.tokens.TTL(auth.PurposeRefresh))
	if err := s.refreshTokens.Create(ctx, userID, hashToken(refreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashToken returns the SHA256 hex digest of the given token string. Only
// digests are persisted; a leaked token table cannot be replayed directly.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
