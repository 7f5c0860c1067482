package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt extracts the expiry claim from a JWT without verifying the
// signature — the client holds no signing key; verification is the
// server's job. Tokens without an exp claim return the zero time.
func ExpiresAt(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, errorRegistry.WrapWith(ErrBadToken, err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// Expired reports whether the token is a JWT that has already expired.
// Opaque (non-JWT) tokens and tokens without expiry report false; only the
// server can judge those.
func Expired(token string) bool {
	exp, err := ExpiresAt(token)
	if err != nil || exp.IsZero() {
		return false
	}
	return time.Now().After(exp)
}
