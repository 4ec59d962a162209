// Package auth inspects the session token issued by the todo service.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryWarnWindow is how close to expiry a token is considered "expiring
// soon". Sessions past this point will likely outlive the websocket
// connection, so the caller warns at startup.
const expiryWarnWindow = 1 * time.Hour

// TokenExpiry extracts the expiry time from a JWT without verifying its
// signature. The client never validates tokens, the server does; we only
// read the exp claim to warn about sessions that are about to lapse.
func TokenExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading exp claim: %w", err)
	}

	if exp == nil {
		return time.Time{}, fmt.Errorf("token has no exp claim")
	}

	return exp.Time, nil
}

// ExpiresSoon reports whether the token expires within the warn window
// (or has already expired). An unparseable token reports false along
// with the error; callers log and continue.
func ExpiresSoon(token string, now time.Time) (bool, time.Time, error) {
	exp, err := TokenExpiry(token)
	if err != nil {
		return false, time.Time{}, err
	}

	return exp.Before(now.Add(expiryWarnWindow)), exp, nil
}
