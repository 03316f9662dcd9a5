package handler // handler defines http handlers

import (
	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/velora/study-portal/internal/auth"       // auth holds the resolved principal type
	"github.com/velora/study-portal/internal/middleware" // middleware stores the principal in context
)

// principal extracts the resolved principal placed in context by the
// identity middleware. Handlers treat a missing principal as an
// unauthenticated request; it means the route was registered without
// the resolver middleware, which is a wiring bug, but the safe answer
// is still 401.
func principal(c echo.Context) (auth.Principal, bool) {
	return middleware.Principal(c)
}
