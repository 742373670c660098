package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{echo.HeaderContentType, echo.HeaderAuthorization}
)

// Preflight answers every OPTIONS request with 200 and the permissive CORS
// headers, before routing. Echo's CORS middleware answers preflight with 204.
func Preflight(allowedOrigins []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodOptions {
				return next(c)
			}
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, allowOrigin(allowedOrigins, c.Request().Header.Get(echo.HeaderOrigin)))
			h.Set(echo.HeaderAccessControlAllowMethods, strings.Join(corsMethods, ","))
			h.Set(echo.HeaderAccessControlAllowHeaders, strings.Join(corsHeaders, ","))
			h.Add(echo.HeaderVary, echo.HeaderOrigin)
			return c.NoContent(http.StatusOK)
		}
	}
}

// CORS adds CORS headers to actual (non-preflight) responses
func CORS(allowedOrigins []string) echo.MiddlewareFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: corsMethods,
		AllowHeaders: corsHeaders,
	})
}

func allowOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	if len(allowed) == 0 {
		return "*"
	}
	return allowed[0]
}
