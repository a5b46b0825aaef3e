package oauth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrValraven/greendash-core/pkg/httpclient"
)

func newTestClient(t *testing.T, cfg Config) *GoogleClient {
	t.Helper()
	httpCfg := httpclient.Config{
		Timeout:      2 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewGoogleClient(cfg, httpclient.New(httpCfg), logger)
}

func TestAuthURL(t *testing.T) {
	g := newTestClient(t, Config{
		ClientID:    "client-123",
		RedirectURL: "https://app.example.com/api/users/oauth/google/callback",
	})

	raw := g.AuthURL()
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/api/users/oauth/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "email profile", q.Get("scope"))
}

func TestExchange_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code-1", r.PostForm.Get("code"))
		assert.Equal(t, "client-123", r.PostForm.Get("client_id"))
		assert.Equal(t, "shhh", r.PostForm.Get("client_secret"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"ya29.token","expires_in":3599,"refresh_token":"1//refresh","scope":"email profile","id_token":"eyJ"}`))
	}))
	defer srv.Close()

	g := newTestClient(t, Config{
		ClientID:      "client-123",
		ClientSecret:  "shhh",
		TokenEndpoint: srv.URL,
	})

	tokens, err := g.Exchange(context.Background(), "auth-code-1")
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tokens.AccessToken)
	assert.Equal(t, "1//refresh", tokens.RefreshToken)
	assert.Equal(t, 3599, tokens.ExpiresIn)
}

func TestExchange_BadCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	g := newTestClient(t, Config{TokenEndpoint: srv.URL})

	tokens, err := g.Exchange(context.Background(), "stale-code")
	assert.Nil(t, tokens)
	assert.ErrorContains(t, err, "unexpected status 400")
}

func TestExchange_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := newTestClient(t, Config{TokenEndpoint: srv.URL})

	tokens, err := g.Exchange(context.Background(), "auth-code-1")
	assert.Nil(t, tokens)
	assert.ErrorContains(t, err, "missing access_token")
}

func TestUserInfo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ya29.token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"108","email":"john@example.com","verified_email":true,"name":"John Doe","picture":"https://lh3.example/p.jpg"}`))
	}))
	defer srv.Close()

	g := newTestClient(t, Config{UserInfoEndpoint: srv.URL})

	info, err := g.UserInfo(context.Background(), "ya29.token")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", info.Email)
	assert.True(t, info.VerifiedEmail)
	assert.Equal(t, "John Doe", info.Name)
}

func TestUserInfo_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := newTestClient(t, Config{UserInfoEndpoint: srv.URL})

	info, err := g.UserInfo(context.Background(), "expired")
	assert.Nil(t, info)
	assert.ErrorContains(t, err, "unexpected status 401")
}
