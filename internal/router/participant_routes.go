package router

import (
	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/auth"
	"github.com/velora/study-portal/internal/handler"
	"github.com/velora/study-portal/internal/middleware"
)

// RegisterParticipant registers the participant-scoped study endpoints
// under /v1. Every route requires a valid JWT and a resolved principal;
// ownership checks inside the handlers then scope all reads and writes
// to the caller's own profile. Messaging routes are shared with
// administrators — the handlers branch on the resolved admin flag.
func RegisterParticipant(e *echo.Echo, pr *handler.ProfileHandler, f *handler.FeedbackHandler, u *handler.UploadHandler, m *handler.MessageHandler, r *auth.Resolver, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.ResolveIdentity(r),
	)

	// Profile: intake completion and self-service updates.
	g.POST("/profile", pr.Create)
	g.GET("/profile", pr.Get)
	g.PUT("/profile", pr.Update)

	// Weekly feedback: submit once per week, list own entries,
	// ?week=N narrows to a single entry.
	g.POST("/feedback", f.Submit)
	g.GET("/feedback", f.List)

	// Progress photos: multipart upload plus per-week listing with
	// presigned retrieval URLs.
	g.POST("/uploads", u.Upload)
	g.GET("/uploads", u.List)

	// Messaging with the administrator channel.
	g.POST("/messages/send", m.Send)
	g.GET("/messages/fetch", m.FetchThread)
	g.POST("/messages/mark-read", m.MarkRead)
}
