package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authFixture(validate TokenValidator) (http.Handler, *int64) {
	var seen int64
	h := Auth(validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestAuth_BearerHeader(t *testing.T) {
	h, seen := authFixture(func(token string) (int64, error) {
		assert.Equal(t, "tok-123", token)
		return 42, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), *seen)
}

func TestAuth_CookieFallback(t *testing.T) {
	h, seen := authFixture(func(token string) (int64, error) {
		assert.Equal(t, "cookie-tok", token)
		return 7, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-tok"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), *seen)
}

func TestAuth_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	h, _ := authFixture(func(token string) (int64, error) {
		assert.Equal(t, "header-tok", token)
		return 1, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer header-tok")
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-tok"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	h, _ := authFixture(func(token string) (int64, error) {
		t.Fatal("validator should not be called")
		return 0, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestAuth_InvalidToken(t *testing.T) {
	h, _ := authFixture(func(token string) (int64, error) {
		return 0, errors.New("bad signature")
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedAuthorizationHeader(t *testing.T) {
	h, _ := authFixture(func(token string) (int64, error) {
		t.Fatal("validator should not be called")
		return 0, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContext_Unset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, int64(0), UserIDFromContext(req.Context()))
}
