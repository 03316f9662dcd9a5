package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/auth"
	"github.com/velora/study-portal/internal/handler"
	"github.com/velora/study-portal/internal/middleware"
)

// RegisterAdmin registers the study coordinator's reporting and
// moderation endpoints under /v1/admin. The chain is JWT validation,
// principal resolution, then the admin gate: the admin decision comes
// from the resolver (profile flag or allow-list), so a forged role
// claim in a token buys nothing.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, r *auth.Resolver, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.ResolveIdentity(r),
		middleware.RequireAdmin(),
	)

	// Reporting view over all enrolled profiles.
	g.GET("/profiles", a.ListProfiles)
	// Coordinator-side profile mutation: status, admin flag, lifecycle.
	g.PUT("/profiles/:id/status", a.UpdateProfileStatus)
	// Read-only feedback view per participant.
	g.GET("/profiles/:id/feedback", a.ProfileFeedback)
	// Mark a progress photo as verified.
	g.PATCH("/uploads/:id/verify", a.VerifyUpload)
}
