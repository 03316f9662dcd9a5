package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// sessionCookieName is the cookie the web client stores its access
// token in. The Authorization header takes precedence when both are
// present.
const sessionCookieName = "session_token"

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and email claims into the request context. The
// token is read from the Authorization header first and from the
// session_token cookie as a fallback; there is no anonymous path, so a
// request carrying neither is rejected outright. Handlers access the
// authenticated user via `c.Get("user_id")` and `c.Get("email")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	// The outer function returns a middleware function.  Echo executes this
	// once when registering the middleware.
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		// The returned handler is invoked for each incoming HTTP request.
		return func(c echo.Context) error {
			// Prefer the Authorization header; a valid header starts with
			// "Bearer " followed by the JWT. When absent, fall back to the
			// session cookie set by the web client.
			var raw string
			if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			} else if ck, err := c.Cookie(sessionCookieName); err == nil && ck.Value != "" {
				raw = ck.Value
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "missing bearer token", "code": "UNAUTHENTICATED",
				})
			}

			// Parse the token using the HS256 signing method and our secret.
			// The callback supplies the signing key and ensures that the
			// algorithm matches what we expect; a different signing method
			// means the token was not issued by us.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "invalid token", "code": "UNAUTHENTICATED",
				})
			}

			// Extract the claims into a map for easy access.
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "invalid claims", "code": "UNAUTHENTICATED",
				})
			}

			// Store the subject (user ID) and email claims in the context.
			// Handlers and downstream middleware access these via c.Get().
			c.Set("user_id", claims["sub"])
			c.Set("email", claims["email"])
			return next(c)
		}
	}
}
