package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParseUnverified decodes the claims without checking the signature. The
// client never holds the backend secret, so this is for display only.
func ParseUnverified(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(strings.TrimSpace(tokenString), claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expiry returns the exp claim of tokenString, if it is a JWT carrying one.
func Expiry(tokenString string) (time.Time, bool) {
	claims, err := ParseUnverified(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
