package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-pos-report/internal/auth"
	"go-pos-report/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *auth.TokenManager, *report.Identity) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	seen := &report.Identity{}
	r := gin.New()
	r.Use(Authenticate(tokens))
	r.GET("/open", func(c *gin.Context) {
		*seen = IdentityFrom(c)
		c.Status(http.StatusNoContent)
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/managers", RequireAuth(), RequireRole("yonetici"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, tokens, seen
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_Identity(t *testing.T) {
	r, tokens, seen := setup(t)
	token, err := tokens.GenerateToken(4, "yonetici")
	require.NoError(t, err)

	get(r, "/open", token)
	assert.Equal(t, report.Identity{Authenticated: true, Subject: "4", Role: "yonetici"}, *seen)

	get(r, "/open", "")
	assert.Equal(t, report.Identity{}, *seen)

	get(r, "/open", "forged")
	assert.False(t, seen.Authenticated)
}

func TestRequireAuth(t *testing.T) {
	r, tokens, _ := setup(t)
	token, err := tokens.GenerateToken(4, "kasiyer")
	require.NoError(t, err)

	w := get(r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"unauthenticated"`)

	assert.Equal(t, http.StatusNoContent, get(r, "/private", token).Code)
}

func TestRequireRole(t *testing.T) {
	r, tokens, _ := setup(t)
	cashier, err := tokens.GenerateToken(5, "kasiyer")
	require.NoError(t, err)
	manager, err := tokens.GenerateToken(4, "yonetici")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/managers", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/managers", cashier).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/managers", manager).Code)
}
