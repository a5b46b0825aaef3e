package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt at the fixed work
// factor. The returned hash embeds its own salt.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// hash. Any internal error fails closed as a mismatch.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// GenerateRandomPassword returns a random placeholder password for accounts
// created through an identity provider. The user never sees it; a password
// reset is the only way to set a usable one.
func GenerateRandomPassword() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
