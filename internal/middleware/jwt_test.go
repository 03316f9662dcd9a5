package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/study-portal/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, prep func(*http.Request)) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	prep(req)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	h := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthBearerHeader(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "p@velora.test", 15)
	require.NoError(t, err)

	rec, c := runJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p@velora.test", c.Get("email"))
	assert.NotNil(t, c.Get("user_id"))
}

func TestJWTAuthCookieFallback(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "p@velora.test", 15)
	require.NoError(t, err)

	rec, _ := runJWT(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: tok.Token})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthHeaderBeatsCookie(t *testing.T) {
	good, err := utils.NewAccessToken(testSecret, 7, "header@velora.test", 15)
	require.NoError(t, err)

	rec, c := runJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+good.Token)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "garbage"})
	})
	assert.Equal(t, http.StatusOK, rec.Code, "a bad cookie must not shadow a valid header")
	assert.Equal(t, "header@velora.test", c.Get("email"))
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec, _ := runJWT(t, func(req *http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, "p@velora.test", 15)
	require.NoError(t, err)

	rec, _ := runJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, "p@velora.test", -1)
	require.NoError(t, err)

	rec, _ := runJWT(t, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
