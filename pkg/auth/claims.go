package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims mirrors the token the analytics backend issues on login.
type AccessTokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
