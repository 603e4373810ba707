package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT bearer token. The signature is
// not checked; the token is only inspected so an expired one can be reported.
// ok is false for opaque tokens and tokens without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
