package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/study-portal/internal/auth"
	"github.com/velora/study-portal/internal/repository"
)

func TestProfileGetReportsCurrentWeek(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewProfileRepo(db)
	h := NewProfileHandler(repo, auth.NewResolver(repo, nil, nil))

	// enrolled 17 days ago lands in week 3
	expectProfileByUser(mock, 7, profileRows(3, 7, 17))

	c, rec := newCtx(t, http.MethodGet, "/v1/profile", "", nil, auth.Principal{UserID: 7})
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data := envelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["current_week"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileGetNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewProfileRepo(db)
	h := NewProfileHandler(repo, auth.NewResolver(repo, nil, nil))

	expectNoProfile(mock, 7)

	c, rec := newCtx(t, http.MethodGet, "/v1/profile", "", nil, auth.Principal{UserID: 7})
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileCreateConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewProfileRepo(db)
	h := NewProfileHandler(repo, auth.NewResolver(repo, nil, nil))

	mock.ExpectExec("INSERT INTO profiles (user_id, enrolled_at, age_range, skin_type, concerns, lifestyle) VALUES (?,?,?,?,?,?)").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '7' for key 'uq_profiles_user'"))

	body := `{"age_range":"25-34","skin_type":"oily"}`
	c, rec := newCtx(t, http.MethodPost, "/v1/profile", echo.MIMEApplicationJSON,
		strings.NewReader(body), auth.Principal{UserID: 7})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeConflict, envelope(t, rec)["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
