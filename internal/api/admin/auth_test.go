package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tashware/muazzin/internal/http/middleware"
)

const (
	testSecret = "test-secret"
	testEmail  = "admin@example.com"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	r := gin.New()
	group := r.Group("/api/admin")
	RegisterAuthRoutes(group, testSecret, testEmail, string(hash))
	group.Use(middleware.JWTMiddleware(testSecret))
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": c.GetString("currentAdmin")})
	})
	return r
}

func login(t *testing.T, r *gin.Engine, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminLoginIssuesToken(t *testing.T) {
	r := testRouter(t)

	w := login(t, r, testEmail, "hunter2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])

	// The issued token opens the protected group.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+resp["token"])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testEmail)
}

func TestAdminLoginRejectsBadPassword(t *testing.T) {
	r := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, login(t, r, testEmail, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, r, "other@example.com", "hunter2").Code)
}

func TestAdminLoginValidatesBody(t *testing.T) {
	r := testRouter(t)

	w := login(t, r, "not-an-email", "hunter2")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
