package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MrValraven/greendash-core/internal/auth"
	"github.com/MrValraven/greendash-core/internal/oauth"
	"github.com/MrValraven/greendash-core/internal/repository"
	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
)

// --- Mock Google Provider ---

type mockGoogleProvider struct {
	mock.Mock
}

func (m *mockGoogleProvider) AuthURL() string {
	return m.Called().String(0)
}

func (m *mockGoogleProvider) Exchange(ctx context.Context, code string) (*oauth.Tokens, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.Tokens), args.Error(1)
}

func (m *mockGoogleProvider) UserInfo(ctx context.Context, accessToken string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func newGoogleTestService(t *testing.T) (*GoogleAuthService, *mockGoogleProvider, *testDeps) {
	t.Helper()
	sessions, deps := newTestService(t, Options{})
	google := new(mockGoogleProvider)
	svc := NewGoogleAuthService(google, deps.users, sessions, newTestLogger())
	return svc, google, deps
}

func googleExchange() (*oauth.Tokens, *oauth.UserInfo) {
	return &oauth.Tokens{AccessToken: "ya29.token", IDToken: "eyJ"},
		&oauth.UserInfo{ID: "108", Email: "john@example.com", VerifiedEmail: true, Name: "John Doe"}
}

func TestHandleCallback_ExistingUser(t *testing.T) {
	svc, google, deps := newGoogleTestService(t)
	ctx := context.Background()

	tokens, info := googleExchange()
	user := sampleUser(true)

	google.On("Exchange", ctx, "auth-code-1").Return(tokens, nil)
	google.On("UserInfo", ctx, "ya29.token").Return(info, nil)
	deps.users.On("GetByEmail", ctx, "john@example.com").Return(user, nil)
	deps.refreshTokens.On("Create", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	pair, err := svc.HandleCallback(ctx, "auth-code-1")

	require.NoError(t, err)
	gotID, err := deps.tokens.Verify(pair.AccessToken, auth.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotID)

	deps.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_FirstLoginCreatesVerifiedUser(t *testing.T) {
	svc, google, deps := newGoogleTestService(t)
	ctx := context.Background()

	tokens, info := googleExchange()
	created := sampleUser(false)
	verified := *created
	verified.EmailVerified = true

	google.On("Exchange", ctx, "auth-code-1").Return(tokens, nil)
	google.On("UserInfo", ctx, "ya29.token").Return(info, nil)
	deps.users.On("GetByEmail", ctx, "john@example.com").Return(nil, apperrors.UserNotFound())
	deps.users.On("Create", ctx, "john@example.com", mock.AnythingOfType("string")).Return(created, nil)
	deps.users.On("Update", ctx, created.ID, mock.AnythingOfType("repository.UserUpdate")).Return(&verified, nil)
	deps.refreshTokens.On("Create", ctx, created.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	pair, err := svc.HandleCallback(ctx, "auth-code-1")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)

	// The placeholder credential is a hash of random material, not empty.
	storedHash := deps.users.Calls[1].Arguments.String(2)
	assert.NotEmpty(t, storedHash)

	update := deps.users.Calls[2].Arguments.Get(2).(repository.UserUpdate)
	require.NotNil(t, update.EmailVerified)
	assert.True(t, *update.EmailVerified)
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	svc, google, deps := newGoogleTestService(t)
	ctx := context.Background()

	google.On("Exchange", ctx, "stale-code").Return(nil, errors.New("invalid_grant"))

	pair, err := svc.HandleCallback(ctx, "stale-code")

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	deps.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestHandleCallback_UserInfoFailure(t *testing.T) {
	svc, google, deps := newGoogleTestService(t)
	ctx := context.Background()

	tokens, _ := googleExchange()
	google.On("Exchange", ctx, "auth-code-1").Return(tokens, nil)
	google.On("UserInfo", ctx, "ya29.token").Return(nil, errors.New("unexpected status 401"))

	pair, err := svc.HandleCallback(ctx, "auth-code-1")

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	deps.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}
