package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The backend signs the access tokens; this side only reads public claims
// to schedule refreshes, so parsing is deliberately unverified.

// TokenExpiry returns the exp claim of the access token. ok is false when
// the token does not parse or carries no expiry.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenSubject returns the sub claim, or "" when absent.
func TokenSubject(raw string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// Expiring reports whether the token expires within the leeway window. An
// unreadable token counts as expiring so the caller refreshes instead of
// sending a dead token upstream.
func Expiring(raw string, leeway time.Duration) bool {
	exp, ok := TokenExpiry(raw)
	if !ok {
		return true
	}
	return time.Until(exp) < leeway
}
