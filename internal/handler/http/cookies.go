package http

import (
	"net/http"
	"time"

	"github.com/MrValraven/greendash-core/internal/domain"
)

// Cookie names for browser sessions. API clients may ignore the cookies and
// use the tokens from the response body instead.
const (
	accessTokenCookie  = "token"
	refreshTokenCookie = "refreshToken"
)

// CookieConfig controls how session cookies are written.
type CookieConfig struct {
	// Secure marks cookies as HTTPS-only. Off only in development.
	Secure bool
	// AccessTTL and RefreshTTL bound the cookie lifetimes to the token
	// lifetimes so browsers drop cookies alongside token expiry.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieConfig) setSession(w http.ResponseWriter, pair *domain.TokenPair) {
	c.setAccessToken(w, pair.AccessToken)
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(c.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) setAccessToken(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(c.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clearSession(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
