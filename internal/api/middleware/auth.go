package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

// userKey is the echo context key holding the resolved *domain.User.
const userKey = "auth.user"

// Auth extracts the bearer token, resolves it to a stored user and injects
// that user into the context. Missing and invalid tokens are the only two
// 401 shapes; the underlying cause is never exposed.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is missing")
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid")
				}
				return err
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// User returns the user resolved by Auth, or nil when Auth did not run.
func User(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// SetUser injects u as the resolved user. Used by tests and internal callers.
func SetUser(c echo.Context, u *domain.User) {
	c.Set(userKey, u)
}

// bearerToken accepts "Bearer <token>" (case-insensitive scheme). Any other
// shape yields an empty token.
func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
