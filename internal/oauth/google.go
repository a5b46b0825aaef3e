// Package oauth implements the Google OAuth 2.0 authorization-code flow:
// building the consent URL, exchanging the callback code for tokens, and
// fetching the user's profile.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrValraven/greendash-core/pkg/httpclient"
)

const (
	defaultAuthEndpoint     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenEndpoint    = "https://oauth2.googleapis.com/token"
	defaultUserInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var scopes = []string{"email", "profile"}

// Config holds the Google OAuth application credentials. The endpoint fields
// default to Google's public endpoints when left empty.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthEndpoint     string
	TokenEndpoint    string
	UserInfoEndpoint string
}

// Tokens is Google's response to an authorization-code exchange.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	IDToken      string `json:"id_token"`
}

// UserInfo is the subset of Google's userinfo payload the service consumes.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleClient talks to Google's OAuth endpoints through the shared retrying
// HTTP client.
type GoogleClient struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

// NewGoogleClient creates a Google OAuth client.
func NewGoogleClient(cfg Config, client *httpclient.Client, logger *slog.Logger) *GoogleClient {
	if cfg.AuthEndpoint == "" {
		cfg.AuthEndpoint = defaultAuthEndpoint
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = defaultTokenEndpoint
	}
	if cfg.UserInfoEndpoint == "" {
		cfg.UserInfoEndpoint = defaultUserInfoEndpoint
	}
	return &GoogleClient{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// AuthURL returns the consent-screen URL the browser is redirected to.
func (g *GoogleClient) AuthURL() string {
	q := url.Values{
		"redirect_uri":  {g.cfg.RedirectURL},
		"client_id":     {g.cfg.ClientID},
		"access_type":   {"offline"},
		"response_type": {"code"},
		"prompt":        {"consent"},
		"scope":         {strings.Join(scopes, " ")},
	}
	return g.cfg.AuthEndpoint + "?" + q.Encode()
}

// Exchange trades the authorization code from the callback for Google tokens.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*Tokens, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {g.cfg.ClientID},
		"client_secret": {g.cfg.ClientSecret},
		"redirect_uri":  {g.cfg.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	resp, err := g.client.Post(ctx, g.cfg.TokenEndpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange authorization code: unexpected status %d", resp.StatusCode)
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &tokens, nil
}

// UserInfo fetches the Google profile for the given access token.
func (g *GoogleClient) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.UserInfoEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing email")
	}

	return &info, nil
}
