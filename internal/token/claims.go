package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt extracts the expiry of a bearer token without verifying its
// signature. The client never validates tokens (that is the backend's job);
// this exists only so the UI can show when a stored session runs out.
// Returns the zero time when the token is not a JWT or carries no exp claim.
func ExpiresAt(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
