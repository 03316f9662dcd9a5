package middleware

// identity.go runs the identity resolver after JWTAuth has validated the
// token. The resolved Principal (user id, profile id, admin flag) is stored
// in the context under "principal" so handlers never re-derive the admin
// decision themselves.

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/auth"
)

// ResolveIdentity returns a middleware that exchanges the JWT claims placed
// in context by JWTAuth for a full Principal. Resolution failures map to a
// 500; a missing or malformed subject claim maps to a 401 because it means
// the token was not one of ours.
func ResolveIdentity(r *auth.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := contextUserID(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "unauthorized", "code": "UNAUTHENTICATED",
				})
			}
			email, _ := c.Get("email").(string)

			p, err := r.Resolve(c.Request().Context(), uid, email)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"success": false, "error": "identity resolution failed", "code": "INTERNAL",
				})
			}
			c.Set("principal", p)
			return next(c)
		}
	}
}

// Principal extracts the resolved principal stored by ResolveIdentity.
func Principal(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get("principal").(auth.Principal)
	return p, ok
}

// contextUserID converts the "user_id" context value (stored by JWTAuth
// straight from the claims map, so its dynamic type depends on the JSON
// decoder) into a uint64.
func contextUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, echo.ErrUnauthorized
}
