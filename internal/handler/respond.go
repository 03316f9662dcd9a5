package handler

// respond.go centralizes the response envelope shared by every endpoint.
// Success bodies are {success:true, data, message?}; error bodies are
// {success:false, error, code, details?}. The code field is a stable
// machine-readable string so clients can distinguish "you already
// submitted this week" from "something broke" without string-matching.

import (
	"github.com/labstack/echo/v4"
)

// Stable error codes of the API. Each maps to exactly one HTTP status.
const (
	CodeUnauthenticated = "UNAUTHENTICATED" // 401
	CodeForbidden       = "FORBIDDEN"       // 403
	CodeNotFound        = "NOT_FOUND"       // 404
	CodeConflict        = "CONFLICT"        // 409
	CodeBadRequest      = "BAD_REQUEST"     // 400
	CodeInternal        = "INTERNAL"        // 500
)

// ok writes a success envelope with the given status and payload.
func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// okMsg is ok with an additional human-readable message.
func okMsg(c echo.Context, status int, data interface{}, msg string) error {
	return c.JSON(status, echo.Map{"success": true, "data": data, "message": msg})
}

// fail writes an error envelope.
func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg, "code": code})
}

// failDetails is fail with a details payload (e.g. per-file upload errors).
func failDetails(c echo.Context, status int, code, msg string, details interface{}) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg, "code": code, "details": details})
}
