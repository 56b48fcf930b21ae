// Package auth handles password hashing and cookie-borne JWT sessions.
package auth

import "github.com/golang-jwt/jwt/v5"

// Claims identify the signed-in user.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
