package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireAdmin returns a middleware that enforces that the resolved
// principal holds the administrator role. It assumes ResolveIdentity has
// already run; a missing principal is treated the same as a
// non-administrator. The admin decision comes from the resolver (profile
// flag or allow-list), never from a client-controlled claim.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok || !p.IsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false, "error": "forbidden", "code": "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
