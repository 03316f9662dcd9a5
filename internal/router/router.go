package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/velora/study-portal/internal/auth"       // identity resolver shared by protected routes
	"github.com/velora/study-portal/internal/handler"    // import the handlers that implement business logic
	"github.com/velora/study-portal/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while the protected /v1/me endpoint resolves the full principal.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r *auth.Resolver, jwtSecret string) {
	// Routes under /v1/auth do not require an existing session: they are
	// the identity-provider surface that mints tokens in the first place.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Logout revokes the supplied refresh token; the access token simply
	// expires on its own.
	g.POST("/logout", a.Logout)

	// /v1/me requires a valid access token and returns the resolved
	// principal including the administrator flag.
	me := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.ResolveIdentity(r),
	)
	me.GET("/me", a.Me)
}
