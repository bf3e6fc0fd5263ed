// Package auth issues and verifies the JWT tokens used by the HTTP API.
package auth

import (
	"errors"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/golang-jwt/jwt/v5"
)

const contextKey = "user"

// ErrNoToken is returned when the request carries no verified token.
var ErrNoToken = errors.New("no token in request context")

// Claims carried in issued tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken issues a signed HS256 token for the given account.
func GenerateToken(accountID, secret string, expiresIn time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiresIn)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// JWTMiddleware returns echo middleware that rejects requests without a
// valid bearer token. Requests matched by skipper pass through
// unauthenticated.
func JWTMiddleware(secret string, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper:    skipper,
		SigningKey: []byte(secret),
		ContextKey: contextKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(Claims)
		},
	})
}

// AccountIDFromContext extracts the authenticated account ID placed in
// the echo context by JWTMiddleware.
func AccountIDFromContext(c echo.Context) (string, error) {
	token, ok := c.Get(contextKey).(*jwt.Token)
	if !ok {
		return "", ErrNoToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", ErrNoToken
	}
	return claims.Subject, nil
}
