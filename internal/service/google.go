package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrValraven/greendash-core/internal/auth"
	"github.com/MrValraven/greendash-core/internal/domain"
	"github.com/MrValraven/greendash-core/internal/oauth"
	"github.com/MrValraven/greendash-core/internal/repository"
	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
)

// GoogleProvider is the slice of the Google OAuth client the service needs.
// Satisfied by oauth.GoogleClient.
type GoogleProvider interface {
	AuthURL() string
	Exchange(ctx context.Context, code string) (*oauth.Tokens, error)
	UserInfo(ctx context.Context, accessToken string) (*oauth.UserInfo, error)
}

// GoogleAuthService handles login through Google: it resolves the callback
// code to a Google profile, finds or creates the matching local account, and
// hands session issuance to the auth service.
type GoogleAuthService struct {
	google   GoogleProvider
	users    repository.UserRepository
	sessions *AuthService
	logger   *slog.Logger
}

// NewGoogleAuthService creates a new Google login service.
func NewGoogleAuthService(google GoogleProvider, users repository.UserRepository, sessions *AuthService, logger *slog.Logger) *GoogleAuthService {
	return &GoogleAuthService{
		google:   google,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// AuthURL returns the Google consent URL to redirect the browser to.
func (s *GoogleAuthService) AuthURL() string {
	return s.google.AuthURL()
}

// HandleCallback completes the OAuth flow for the given authorization code.
// A first-time Google login creates a local account holding a random
// placeholder password; Google vouches for the address, so the account starts
// verified. Subsequent logins reuse the existing account by email.
func (s *GoogleAuthService) HandleCallback(ctx context.Context, code string) (*domain.TokenPair, error) {
	tokens, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Unauthorized("google code exchange failed")
	}

	info, err := s.google.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("google profile fetch failed")
	}

	user, err := s.users.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.createGoogleUser(ctx, info.Email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	pair, err := s.sessions.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "google login completed",
		slog.Int64("user_id", user.ID),
	)

	return pair, nil
}

func (s *GoogleAuthService) createGoogleUser(ctx context.Context, email string) (*domain.User, error) {
	placeholder, err := auth.GenerateRandomPassword()
	if err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(placeholder)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	user, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("create google user: %w", err)
	}

	verified := true
	user, err = s.users.Update(ctx, user.ID, repository.UserUpdate{EmailVerified: &verified})
	if err != nil {
		return nil, fmt.Errorf("mark google user verified: %w", err)
	}

	s.logger.InfoContext(ctx, "google user created",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}
