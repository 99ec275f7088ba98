package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// AccountIDKey is the echo context key for the authenticated account id.
	AccountIDKey = "account_id"
	// BearerTokenKey holds the raw session token so it can be forwarded to
	// the license authority on the caller's behalf.
	BearerTokenKey = "bearer_token"
)

// SessionAuth validates the session JWT the license authority issued at
// login. Only HS256 is accepted; an alg-switching token is rejected.
func SessionAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "session has no subject")
			}

			c.Set(AccountIDKey, sub)
			c.Set(BearerTokenKey, raw)
			return next(c)
		}
	}
}
