package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/auth"
	"github.com/velora/study-portal/internal/model"
	"github.com/velora/study-portal/internal/repository"
	"github.com/velora/study-portal/internal/study"
)

// ProfileHandler serves the participant-facing profile endpoints.
// Creating a profile is what completes intake and starts the clock on
// week numbering; every other core operation 404s until it exists.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
	Resolver *auth.Resolver
}

func NewProfileHandler(profiles *repository.ProfileRepo, resolver *auth.Resolver) *ProfileHandler {
	if profiles == nil || resolver == nil {
		panic("nil dependency passed to NewProfileHandler")
	}
	return &ProfileHandler{Profiles: profiles, Resolver: resolver}
}

type intakeReq struct {
	AgeRange  string `json:"age_range"`
	SkinType  string `json:"skin_type"`
	Concerns  string `json:"concerns"`
	Lifestyle string `json:"lifestyle"`
}

type profileResp struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	EnrolledAt  time.Time `json:"enrolled_at"`
	AgeRange    string    `json:"age_range"`
	SkinType    string    `json:"skin_type"`
	Concerns    string    `json:"concerns"`
	Lifestyle   string    `json:"lifestyle"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"is_active"`
	CurrentWeek int       `json:"current_week"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProfileResp(p model.Profile) profileResp {
	return profileResp{
		ID:          p.ID,
		UserID:      p.UserID,
		EnrolledAt:  p.EnrolledAt,
		AgeRange:    p.AgeRange,
		SkinType:    p.SkinType,
		Concerns:    p.Concerns,
		Lifestyle:   p.Lifestyle,
		Status:      p.Status,
		IsActive:    p.IsActive,
		CurrentWeek: study.WeekNumber(p.EnrolledAt, time.Now().UTC()),
		CreatedAt:   p.CreatedAt,
	}
}

// Create handles POST /v1/profile. It records the enrollment instant and
// the intake fields. One profile per user: a second call conflicts.
func (h *ProfileHandler) Create(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}
	var req intakeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Profiles.Create(ctx, p.UserID, time.Now().UTC(), req.AgeRange, req.SkinType, req.Concerns, req.Lifestyle)
	if err != nil {
		if err == repository.ErrProfileExists {
			return fail(c, http.StatusConflict, CodeConflict, "profile already exists")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "create profile failed")
	}
	// the cached principal has no profile id yet; drop it
	h.Resolver.Invalidate(ctx, p.UserID)

	prof, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}
	return okMsg(c, http.StatusCreated, toProfileResp(prof), "enrollment complete")
}

// Get handles GET /v1/profile, returning the caller's own profile with
// the derived current week.
func (h *ProfileHandler) Get(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prof, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}
	return ok(c, http.StatusOK, toProfileResp(prof))
}

// Update handles PUT /v1/profile. Participants may revise their intake
// fields; enrollment date, status and the admin flag stay untouched.
func (h *ProfileHandler) Update(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}
	var req intakeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Profiles.UpdateIntake(ctx, p.UserID, req.AgeRange, req.SkinType, req.Concerns, req.Lifestyle); err != nil {
		if err == repository.ErrProfileNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "profile not found")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "update profile failed")
	}
	prof, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}
	return ok(c, http.StatusOK, toProfileResp(prof))
}
