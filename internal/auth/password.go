package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 64
	MinPasswordLen = 1
	// bcrypt ignores input beyond 72 bytes.
	MaxPasswordLen = 72
)

var (
	ErrInvalidUsername = fmt.Errorf("username must be %d to %d characters", MinUsernameLen, MaxUsernameLen)
	ErrInvalidPassword = fmt.Errorf("password must be %d to %d bytes", MinPasswordLen, MaxPasswordLen)
	ErrBadCredentials  = errors.New("invalid username or password")
)

var strict = bluemonday.StrictPolicy()

// NormalizeUsername strips markup and surrounding space, then checks length.
func NormalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(strict.Sanitize(raw))
	if n := utf8.RuneCountInString(name); n < MinUsernameLen || n > MaxUsernameLen {
		return "", ErrInvalidUsername
	}
	return name, nil
}

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return "", ErrInvalidPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword compares a password with its hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}
