package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora/study-portal/internal/imaging"
	"github.com/velora/study-portal/internal/model"
	"github.com/velora/study-portal/internal/queue"
	"github.com/velora/study-portal/internal/repository"
	queue_publisher "github.com/velora/study-portal/internal/service"
	"github.com/velora/study-portal/internal/storage"
	"github.com/velora/study-portal/internal/study"
)

const (
	// MaxUploadFiles bounds one batch of progress photos.
	MaxUploadFiles = 4
	// MaxUploadBytes is the per-file size ceiling (5 MiB).
	MaxUploadBytes = 5 << 20
)

// ObjectStore is the slice of the storage layer the upload endpoints
// need. *storage.Store satisfies it; tests substitute a fake.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// UploadHandler serves the progress-photo endpoints. Files in a batch
// are processed independently: one bad file never sinks the others, and
// the call fails outright only when zero files succeed.
type UploadHandler struct {
	Profiles *repository.ProfileRepo
	Uploads  *repository.UploadRepo
	Store    ObjectStore
}

func NewUploadHandler(profiles *repository.ProfileRepo, uploads *repository.UploadRepo, store ObjectStore) *UploadHandler {
	if profiles == nil || uploads == nil || store == nil {
		panic("nil dependency passed to NewUploadHandler")
	}
	return &UploadHandler{Profiles: profiles, Uploads: uploads, Store: store}
}

type uploadResp struct {
	ID         uint64    `json:"id"`
	ProfileID  uint64    `json:"profile_id"`
	WeekNumber int       `json:"week_number"`
	StorageKey string    `json:"storage_key"`
	Consent    bool      `json:"consent"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"created_at"`
	SignedURL  string    `json:"signed_url,omitempty"`
	Filename   string    `json:"filename,omitempty"`
}

type uploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

func toUploadResp(u model.UploadRecord) uploadResp {
	return uploadResp{
		ID:         u.ID,
		ProfileID:  u.ProfileID,
		WeekNumber: u.WeekNumber,
		StorageKey: u.StorageKey,
		Consent:    u.Consent,
		Verified:   u.Verified,
		CreatedAt:  u.CreatedAt,
	}
}

// Upload handles POST /v1/uploads (multipart). Checks run in order:
// profile, week bound, batch size, then per-file validation. Every
// stored image has passed through imaging.Sanitize, so no EXIF
// location or device data survives to the bucket.
func (h *UploadHandler) Upload(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	prof, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return fail(c, http.StatusNotFound, CodeNotFound, "profile not found; complete intake first")
		}
		return fail(c, http.StatusInternalServerError, CodeInternal, "load profile failed")
	}

	week, err := strconv.Atoi(c.FormValue("week"))
	if err != nil || !study.ValidUploadWeek(week) {
		return fail(c, http.StatusBadRequest, CodeBadRequest,
			fmt.Sprintf("week must be an integer between 1 and %d", study.MaxUploadWeek))
	}
	consent := c.FormValue("consent") == "true"

	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "multipart form required")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "at least one file is required")
	}
	if len(files) > MaxUploadFiles {
		return fail(c, http.StatusBadRequest, CodeBadRequest,
			fmt.Sprintf("at most %d files per upload", MaxUploadFiles))
	}

	var (
		saved    []uploadResp
		failures []uploadFailure
		storeErr bool // true when any failure came from storage, not validation
	)
	for _, fh := range files {
		rec, ferr, isStoreErr := h.processFile(ctx, prof.ID, week, consent, fh)
		if ferr != nil {
			failures = append(failures, uploadFailure{Filename: fh.Filename, Error: ferr.Error()})
			storeErr = storeErr || isStoreErr
			continue
		}
		r := toUploadResp(rec)
		r.Filename = fh.Filename
		saved = append(saved, r)
	}

	if len(saved) == 0 {
		status := http.StatusBadRequest
		code := CodeBadRequest
		if storeErr {
			status, code = http.StatusInternalServerError, CodeInternal
		}
		return failDetails(c, status, code, "no files were uploaded", failures)
	}

	_ = queue_publisher.PublishStudyEvent(c.Request().Context(), queue.StudyEvent{
		Type:       queue.EventUploadReceived,
		UserID:     p.UserID,
		ProfileID:  prof.ID,
		WeekNumber: week,
		Count:      len(saved),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	data := echo.Map{"uploads": saved}
	if len(failures) > 0 {
		data["errors"] = failures
	}
	return okMsg(c, http.StatusCreated, data,
		fmt.Sprintf("%d of %d files uploaded", len(saved), len(files)))
}

// processFile validates, sanitizes and persists one file. The third
// return value reports whether a failure happened at the storage layer
// (as opposed to validation), which decides the batch's status code
// when nothing succeeds.
func (h *UploadHandler) processFile(ctx context.Context, profileID uint64, week int, consent bool, fh *multipart.FileHeader) (model.UploadRecord, error, bool) {
	if ct := fh.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return model.UploadRecord{}, fmt.Errorf("unsupported content type %q", ct), false
	}
	if fh.Size > MaxUploadBytes {
		return model.UploadRecord{}, fmt.Errorf("file exceeds %d byte limit", MaxUploadBytes), false
	}

	src, err := fh.Open()
	if err != nil {
		return model.UploadRecord{}, fmt.Errorf("open file: %w", err), true
	}
	defer src.Close()

	raw, err := io.ReadAll(io.LimitReader(src, MaxUploadBytes+1))
	if err != nil {
		return model.UploadRecord{}, fmt.Errorf("read file: %w", err), true
	}
	if len(raw) > MaxUploadBytes {
		return model.UploadRecord{}, fmt.Errorf("file exceeds %d byte limit", MaxUploadBytes), false
	}

	clean, err := imaging.Sanitize(raw)
	if err != nil {
		return model.UploadRecord{}, fmt.Errorf("invalid image: %v", err), false
	}

	key := storage.ObjectKey(profileID, week)
	if err := h.Store.Put(ctx, key, clean, "image/jpeg"); err != nil {
		return model.UploadRecord{}, fmt.Errorf("store file: %v", err), true
	}

	id, err := h.Uploads.Create(ctx, model.UploadRecord{
		ProfileID:  profileID,
		WeekNumber: week,
		StorageKey: key,
		Consent:    consent,
	})
	if err != nil {
		return model.UploadRecord{}, fmt.Errorf("save record: %v", err), true
	}

	rec, err := h.Uploads.GetByID(ctx, id)
	if err != nil {
		return model.UploadRecord{}, fmt.Errorf("load record: %v", err), true
	}
	return rec, nil, false
}

// List handles GET /v1/uploads?week=N. Each record carries a presigned
// retrieval URL valid for about an hour; when minting fails for one
// record the raw storage key is returned for it instead of failing the
// whole list.
func (h *UploadHandler) List(c echo.Context) error {
	p, okP := principal(c)
	if !okP {
		return fail(c, http.StatusUnauthorized, CodeUnauthenticated, "unauthorized")
	}
	week, err := strconv.Atoi(c.QueryParam("week"))
	if err != nil || !study.ValidUploadWeek(week) {
		return fail(c, http.StatusBadRequest, CodeBadRequest, "invalid week")
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

	recs, err := h.Uploads.ListByProfileWeek(ctx, prof.ID, week)
	if err != nil {
		return fail(c, http.StatusInternalServerError, CodeInternal, "query failed")
	}

	out := make([]uploadResp, 0, len(recs))
	for _, rec := range recs {
		r := toUploadResp(rec)
		if url, err := h.Store.PresignGet(ctx, rec.StorageKey); err == nil {
			r.SignedURL = url
		}
		// on presign failure the raw storage key in r.StorageKey is the fallback
		out = append(out, r)
	}
	return ok(c, http.StatusOK, out)
}
