package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/study-portal/internal/auth"
	"github.com/velora/study-portal/internal/model"
)

type fakeProfiles struct {
	prof model.Profile
	err  error
}

func (f fakeProfiles) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	return f.prof, f.err
}

func runIdentity(t *testing.T, r *auth.Resolver, userID interface{}, email string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	c.Set("email", email)

	h := ResolveIdentity(r)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestResolveIdentitySetsPrincipal(t *testing.T) {
	r := auth.NewResolver(fakeProfiles{prof: model.Profile{ID: 3, UserID: 7, IsAdmin: true}}, nil, nil)

	// jwt claims decode numbers as float64; the middleware must cope
	rec, c := runIdentity(t, r, float64(7), "coordinator@velora.test")
	assert.Equal(t, http.StatusOK, rec.Code)

	p, ok := Principal(c)
	require.True(t, ok)
	assert.Equal(t, uint64(7), p.UserID)
	assert.Equal(t, uint64(3), p.ProfileID)
	assert.True(t, p.IsAdmin)
}

func TestResolveIdentityMissingSubject(t *testing.T) {
	r := auth.NewResolver(fakeProfiles{}, nil, nil)

	rec, _ := runIdentity(t, r, nil, "p@velora.test")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResolveIdentityStringSubject(t *testing.T) {
	r := auth.NewResolver(fakeProfiles{prof: model.Profile{ID: 3, UserID: 7}}, nil, nil)

	rec, c := runIdentity(t, r, "7", "p@velora.test")
	assert.Equal(t, http.StatusOK, rec.Code)
	p, ok := Principal(c)
	require.True(t, ok)
	assert.Equal(t, uint64(7), p.UserID)
}

func TestRequireAdminAllows(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/profiles", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("principal", auth.Principal{UserID: 1, IsAdmin: true})

	h := RequireAdmin()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsParticipant(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/profiles", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("principal", auth.Principal{UserID: 7})

	h := RequireAdmin()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}

func TestRequireAdminRejectsMissingPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/profiles", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	h := RequireAdmin()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
