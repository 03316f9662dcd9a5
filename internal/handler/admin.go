package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/auth"
	"github.com/velora/study-portal/internal/repository"
)

// AdminHandler bundles repositories for the study coordinator's
// reporting and moderation endpoints. All routes are guarded by
// RequireAdmin; the handlers still re-check nothing ownership-wise
// because administrators read across profiles by design.
type AdminHandler struct {
	Profiles *repository.ProfileRepo
	Feedback *repository.FeedbackRepo
	Uploads  *repository.UploadRepo
	Resolver *auth.Resolver
}

func NewAdminHandler(profiles *repository.ProfileRepo, feedback *repository.FeedbackRepo, uploads *repository.UploadRepo, resolver *auth.Resolver) *AdminHandler {
	if profiles == nil || feedback == nil || uploads == nil || resolver == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Profiles: profiles, Feedback: feedback, Uploads: uploads, Resolver: resolver}
}

// ListProfiles handles GET /v1/admin/profiles: every enrolled profile
// with its derived current week, ordered by enrollment date.
func (h *AdminHandler) ListProfiles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, err := h.Profiles.ListAll(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "query failed")
	}
	out := make([]profileResp, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResp(p))
	}
	return ok(c, http.StatusOK, out)
}

type statusReq struct {
	Status   string `json:"status"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive bool   `json:"is_active"`
}

// UpdateProfileStatus handles PUT /v1/admin/profiles/:id/status — the
// coordinator-side mutation of status, admin flag and soft lifecycle.
// The resolver cache for the affected user is dropped so a granted or
// revoked admin flag takes effect on their next request.
func (h *AdminHandler) UpdateProfileStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid profile id")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prof, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}
	if err := h.Profiles.UpdateStatus(ctx, id, req.Status, req.IsAdmin, req.IsActive); err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "update failed")
	}
	h.Resolver.Invalidate(ctx, prof.UserID)

	updated, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}
	return ok(c, http.StatusOK, toProfileResp(updated))
}

// ProfileFeedback handles GET /v1/admin/profiles/:id/feedback — the
// read-only reporting view over a participant's weekly entries. There
// is deliberately no admin write path for feedback.
func (h *AdminHandler) ProfileFeedback(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid profile id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Profiles.GetByID(ctx, id); err != nil {
		if err == repository.ErrProfileNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}

	entries, err := h.Feedback.ListByProfile(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "query failed")
	}
	out := make([]feedbackResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, toFeedbackResp(e))
	}
	return ok(c, http.StatusOK, out)
}

// VerifyUpload handles PATCH /v1/admin/uploads/:id/verify, setting the
// verified flag — the only post-creation mutation an upload record
// allows.
func (h *AdminHandler) VerifyUpload(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid upload id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Uploads.MarkVerified(ctx, id); err != nil {
		if err == repository.ErrUploadNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "upload not found")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "update failed")
	}
	rec, err := h.Uploads.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "load record failed")
	}
	return ok(c, http.StatusOK, toUploadResp(rec))
}
