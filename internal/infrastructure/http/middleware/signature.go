package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-sync/errors"
	"github.com/johnquangdev/meeting-sync/pkg/signature"
)

// WebhookSignature rejects POST requests whose body does not match the HMAC
// in header. The body is restored for the next handler.
func WebhookSignature(secret, header string, onError func(c echo.Context, err error) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodPost {
				return next(c)
			}

			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					return he
				}
				return onError(c, errors.ErrInvalidSignature().WithDetail("reason", "unreadable body"))
			}
			if !signature.Verify(secret, body, c.Request().Header.Get(header)) {
				return onError(c, errors.ErrInvalidSignature())
			}

			c.Request().Body = io.NopCloser(bytes.NewReader(body))
			return next(c)
		}
	}
}
