package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/duetcast/duetcast/store"
)

// userContextKey is the echo context key holding the authenticated user.
const userContextKey = "duetcast-user"

// UserFromContext returns the authenticated user set by Auth, or nil.
func UserFromContext(c echo.Context) *store.User {
	user, _ := c.Get(userContextKey).(*store.User)
	return user
}

// HashToken returns the hex-encoded SHA-256 digest of an access token.
// Only digests are stored, never raw tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Auth resolves a Bearer access token to a user and stores it on the
// request context. Requests without a valid token get 401.
func Auth(s *store.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			user, err := s.GetUserByTokenHash(c.Request().Context(), HashToken(token))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve access token")
			}
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

func extractToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
