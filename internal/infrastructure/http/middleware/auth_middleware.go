package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-sync/errors"
	"github.com/johnquangdev/meeting-sync/pkg/jwt"
)

// AccountIDKey is the Echo context key holding the authenticated account id
const AccountIDKey = "account_id"

// EchoAuth returns an Echo middleware that validates the bearer JWT and sets
// "account_id" into the Echo context
func EchoAuth(jwtManager *jwt.Manager, onError func(c echo.Context, err error) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return onError(c, errors.ErrUnauthenticated().WithDetail("reason", "missing authorization token"))
			}

			claims, err := jwtManager.ValidateAccessToken(token)
			if err != nil {
				appErr := errors.ErrUnauthenticated()
				appErr.Raw = err
				return onError(c, appErr)
			}

			c.Set(AccountIDKey, claims.AccountID)
			return next(c)
		}
	}
}

// GetAccountID returns the account id set by EchoAuth
func GetAccountID(c echo.Context) (string, bool) {
	id, ok := c.Get(AccountIDKey).(string)
	return id, ok && id != ""
}

// extractToken reads "Authorization: Bearer <token>", falling back to the access_token cookie
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
