package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
)

// Purpose scopes a signed token to exactly one functional use. Each purpose
// has its own signing secret and lifetime, so a token issued for one purpose
// never verifies against another.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify-email"
	PurposeAccess        Purpose = "access"
	PurposeRefresh       Purpose = "refresh"
	PurposePasswordReset Purpose = "password-reset"
)

func (p Purpose) String() string { return string(p) }

// issuer identifies tokens minted by this service.
const issuer = "greendash-core"

// Claims are the JWT claims carried by every purpose-bound token.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// PurposeKey holds the signing secret and lifetime for one token purpose.
type PurposeKey struct {
	Secret []byte
	TTL    time.Duration
}

// TokenManager signs and verifies purpose-bound JWTs (HS256). It is safe for
// concurrent use; the key material is fixed at construction.
type TokenManager struct {
	keys map[Purpose]PurposeKey
}

// NewTokenManager creates a token manager from per-purpose key material.
// All four purposes must be present.
func NewTokenManager(keys map[Purpose]PurposeKey) (*TokenManager, error) {
	for _, p := range []Purpose{PurposeVerifyEmail, PurposeAccess, PurposeRefresh, PurposePasswordReset} {
		k, ok := keys[p]
		if !ok || len(k.Secret) == 0 {
			return nil, fmt.Errorf("token manager: missing secret for purpose %q", p)
		}
		if k.TTL <= 0 {
			return nil, fmt.Errorf("token manager: non-positive TTL for purpose %q", p)
		}
	}
	return &TokenManager{keys: keys}, nil
}

// TTL returns the configured lifetime for the given purpose.
func (m *TokenManager) TTL(purpose Purpose) time.Duration {
	return m.keys[purpose].TTL
}

// Sign produces a signed token embedding the user id and an expiry derived
// from the purpose's configured lifetime.
func (m *TokenManager) Sign(userID int64, purpose Purpose) (string, error) {
	key, ok := m.keys[purpose]
	if !ok {
		return "", fmt.Errorf("sign token: unknown purpose %q", purpose)
	}

	now := time.Now().UTC()
	claims := &Claims{
		UserID:  userID,
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.TTL)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}

	return signed, nil
}

// Verify parses a token against the secret for the given purpose and returns
// the embedded user id. An expired token yields ExpiredToken; any signature,
// structure, or purpose mismatch yields InvalidToken. Callers rely on the
// distinction: expired means retry or resend, invalid means reject.
func (m *TokenManager) Verify(tokenString string, purpose Purpose) (int64, error) {
	key, ok := m.keys[purpose]
	if !ok {
		return 0, apperrors.InvalidToken(purpose.String())
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperrors.ExpiredToken(purpose.String())
		}
		return 0, apperrors.InvalidToken(purpose.String())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, apperrors.InvalidToken(purpose.String())
	}
	if claims.Purpose != string(purpose) {
		return 0, apperrors.InvalidToken(purpose.String())
	}

	return claims.UserID, nil
}
