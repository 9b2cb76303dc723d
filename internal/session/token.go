package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether token is a JWT whose exp claim lies before now.
// The portal does not hold the backend's signing key, so the signature is not
// checked here; the backend stays the authority on validity. Tokens that are
// not JWTs, or carry no exp claim, are never reported as expired.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}
