package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims are the marketplace bearer token claims the portal cares about.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Expiry extracts the expiry timestamp from a marketplace bearer token
// without verifying its signature. The portal does not own the upstream
// signing key, so by default only the expiry claim is inspected.
func Expiry(tokenString string) (time.Time, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenInvalid
	}
	return claims.ExpiresAt.Time, nil
}

// ValidAt reports whether the token's expiry is strictly in the future
// relative to now. A token that cannot be decoded is never valid.
func ValidAt(tokenString string, now time.Time) bool {
	exp, err := Expiry(tokenString)
	if err != nil {
		return false
	}
	return now.Before(exp)
}

// Verify validates the token signature with the shared HMAC secret and
// returns its claims. Used when the deployment shares a signing secret
// with the marketplace API.
func Verify(tokenString, secret string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
