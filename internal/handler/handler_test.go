package handler

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/velora/study-portal/internal/auth"
)

// newMock returns a stub database matching expected SQL by exact string
// comparison.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newCtx builds an echo context carrying a resolved principal, the way
// the identity middleware would for a real request.
func newCtx(t *testing.T, method, target, contentType string, body io.Reader, p auth.Principal) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("principal", p)
	return c, rec
}

// envelope decodes a response body into the shared API envelope shape.
func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const profileCols = "id,user_id,enrolled_at,is_admin,age_range,skin_type,concerns,lifestyle,status,is_active,created_at,updated_at"

// profileRows returns a one-row result for the profile select, enrolled
// the given number of days ago.
func profileRows(profileID, userID uint64, daysEnrolled int) *sqlmock.Rows {
	now := time.Now().UTC()
	enrolled := now.Add(-time.Duration(daysEnrolled) * 24 * time.Hour)
	return sqlmock.NewRows([]string{"id", "user_id", "enrolled_at", "is_admin", "age_range", "skin_type",
		"concerns", "lifestyle", "status", "is_active", "created_at", "updated_at"}).
		AddRow(profileID, userID, enrolled, false, "25-34", "combination", "", "", "", true, now, now)
}

func expectProfileByUser(mock sqlmock.Sqlmock, userID uint64, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT " + profileCols + " FROM profiles WHERE user_id=? LIMIT 1").
		WithArgs(userID).
		WillReturnRows(rows)
}

func expectNoProfile(mock sqlmock.Sqlmock, userID uint64) {
	mock.ExpectQuery("SELECT " + profileCols + " FROM profiles WHERE user_id=? LIMIT 1").
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)
}
