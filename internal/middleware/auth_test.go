package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupAuthRouter(jwtManager *jwt.Manager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuth(jwtManager)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": string(GetUserRole(c))})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	m := jwt.NewManager("secret", "test", time.Hour)
	router := setupAuthRouter(m)

	token, _ := m.GenerateToken("user-1", "jane@example.com", "Jane", "MODERATOR")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
	assert.Contains(t, w.Body.String(), "MODERATOR")
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	m := jwt.NewManager("secret", "test", time.Hour)
	router := setupAuthRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	m := jwt.NewManager("secret", "test", time.Hour)
	router := setupAuthRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	expired := jwt.NewManager("secret", "test", -time.Minute)
	router := setupAuthRouter(expired)

	token, _ := expired.GenerateToken("user-1", "jane@example.com", "", "RESIDENT")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestRequireModerator(t *testing.T) {
	m := jwt.NewManager("secret", "test", time.Hour)
	router := setupAuthRouter(m, RequireModerator())

	tests := []struct {
		role string
		want int
	}{
		{"MODERATOR", http.StatusOK},
		{"ADMIN", http.StatusOK},
		{"RESIDENT", http.StatusForbidden},
		{"STAFF", http.StatusForbidden},
		{"COUNCIL_MEMBER", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token, _ := m.GenerateToken("user-1", "jane@example.com", "", tt.role)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := jwt.NewManager("secret", "test", time.Hour)
	router := setupAuthRouter(m, RequireRole(domain.RoleStaff, domain.RoleAdmin))

	staffToken, _ := m.GenerateToken("user-1", "s@example.com", "", "STAFF")
	residentToken, _ := m.GenerateToken("user-2", "r@example.com", "", "RESIDENT")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+residentToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
