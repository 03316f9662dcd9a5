package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/model"
	"github.com/velora/study-portal/internal/queue"
	"github.com/velora/study-portal/internal/repository"
	queue_publisher "github.com/velora/study-portal/internal/service"
	"github.com/velora/study-portal/internal/study"
)

// FeedbackHandler serves the weekly feedback endpoints. The existence
// pre-check before insert is advisory only: it produces the friendly
// conflict message in the common case, while the unique key on
// (profile_id, week_number) catches the race where two submissions for
// the same week arrive concurrently. Both paths surface the same 409.
type FeedbackHandler struct {
	Profiles *repository.ProfileRepo
	Feedback *repository.FeedbackRepo
}

func NewFeedbackHandler(profiles *repository.ProfileRepo, feedback *repository.FeedbackRepo) *FeedbackHandler {
	if profiles == nil || feedback == nil {
		panic("nil repository passed to NewFeedbackHandler")
	}
	return &FeedbackHandler{Profiles: profiles, Feedback: feedback}
}

type feedbackReq struct {
	WeekNumber    *int   `json:"week_number"` // nil means "derive from enrollment date"
	SkinFeel      string `json:"skin_feel"`
	Changes       string `json:"changes"`
	Routine       string `json:"routine"`
	Reactions     string `json:"reactions"`
	OverallRating int    `json:"overall_rating"`
}

type feedbackResp struct {
	ID            uint64    `json:"id"`
	ProfileID     uint64    `json:"profile_id"`
	WeekNumber    int       `json:"week_number"`
	SkinFeel      string    `json:"skin_feel"`
	Changes       string    `json:"changes"`
	Routine       string    `json:"routine"`
	Reactions     string    `json:"reactions"`
	OverallRating int       `json:"overall_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

func toFeedbackResp(e model.FeedbackEntry) feedbackResp {
	return feedbackResp{
		ID:            e.ID,
		ProfileID:     e.ProfileID,
		WeekNumber:    e.WeekNumber,
		SkinFeel:      e.SkinFeel,
		Changes:       e.Changes,
		Routine:       e.Routine,
		Reactions:     e.Reactions,
		OverallRating: e.OverallRating,
		CreatedAt:     e.CreatedAt,
	}
}

// Submit handles POST /v1/feedback. Input validation happens before any
// persistence attempt; storage failures surface as 500 and are never
// retried here — the participant resubmits.
func (h *FeedbackHandler) Submit(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}
	if req.OverallRating < 1 || req.OverallRating > 10 {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "overall_rating must be between 1 and 10")
	}
	if req.WeekNumber != nil && !study.ValidFeedbackWeek(*req.WeekNumber) {
		return fail(c, http.StatusBadRequest, CodeBadRequest,
			fmt.Sprintf("week_number must be between 1 and %d", study.MaxWeek))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prof, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "profile not found; complete intake first")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}

	week := study.WeekNumber(prof.EnrolledAt, time.Now().UTC())
	if req.WeekNumber != nil {
		week = *req.WeekNumber
	}

	// advisory pre-check for a friendly message; the unique key is the
	// real guard and the Create below maps its violation to the same 409
	if _, err := h.Feedback.GetByProfileWeek(ctx, prof.ID, week); err == nil {
		return failDetails(c, http.StatusConflict, CodeConflict,
			fmt.Sprintf("feedback for week %d already submitted; edit the existing entry instead", week),
			echo.Map{"week_number": week})
	} else if err != sql.ErrNoRows {
		return fail(c, http.StatusInternalServerError, CodeInternal, "query failed")
	}

	entry := model.FeedbackEntry{
		ProfileID:     prof.ID,
		WeekNumber:    week,
		SkinFeel:      strings.TrimSpace(req.SkinFeel),
		Changes:       strings.TrimSpace(req.Changes),
		Routine:       strings.TrimSpace(req.Routine),
		Reactions:     strings.TrimSpace(req.Reactions),
		OverallRating: req.OverallRating,
	}
	if _, err := h.Feedback.Create(ctx, entry); err != nil {
		if err == repository.ErrDuplicateWeek {
			return failDetails(c, http.StatusConflict, CodeConflict,
				fmt.Sprintf("feedback for week %d already submitted; edit the existing entry instead", week),
				echo.Map{"week_number": week})
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "save feedback failed")
	}

	created, err := h.Feedback.GetByProfileWeek(ctx, prof.ID, week)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "load feedback failed")
	}

	_ = queue_publisher.PublishStudyEvent(c.Request().Context(), queue.StudyEvent{
		Type:       queue.EventFeedbackSubmitted,
		UserID:     p.UserID,
		ProfileID:  prof.ID,
		WeekNumber: week,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return ok(c, http.StatusCreated, toFeedbackResp(created))
}

// List handles GET /v1/feedback. With a ?week=N query it returns the
// single entry for that week (or null); without it, every entry ordered
// by week ascending.
func (h *FeedbackHandler) List(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prof, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "profile not found; complete intake first")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}

	if raw := c.QueryParam("week"); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil || !study.ValidFeedbackWeek(week) {
			return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid week")
		}
		entry, err := h.Feedback.GetByProfileWeek(ctx, prof.ID, week)
		if err == sql.ErrNoRows {
			return ok(c, http.StatusOK, echo.Map{"feedback": nil})
		}
		if err != nil {
			return fail(c, http.StatusInternalServerError, CodeInternal, "query failed")
		}
		return ok(c, http.StatusOK, echo.Map{"feedback": toFeedbackResp(entry)})
	}

	entries, err := h.Feedback.ListByProfile(ctx, prof.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "query failed")
	}
	out := make([]feedbackResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, toFeedbackResp(e))
	}
	return ok(c, http.StatusOK, out)
}
