package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/backend/internal/auth"
	"github.com/campus-hub/backend/internal/models"
)

type mockLoader struct {
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (m *mockLoader) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByIDFn(ctx, id)
}

func newAuthRouter(jwtService *auth.JWTService, loader UserLoader, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(jwtService, loader)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user := auth.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"role": string(user.Role), "session_id": auth.SessionID(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthLoadsFreshUser(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	sessionID := uuid.New().String()

	// Token says student, directory says admin: directory wins.
	token, err := jwtService.Generate(sessionID, userID, "ada@campus.example", "student")
	require.NoError(t, err)

	loader := &mockLoader{GetByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
		assert.Equal(t, userID, id)
		return &models.User{ID: id, Email: "ada@campus.example", Role: models.RoleAdmin}, nil
	}}

	w := doGet(newAuthRouter(jwtService, loader), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	assert.Contains(t, w.Body.String(), sessionID)
}

func TestAuthRejects(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	loader := &mockLoader{GetByIDFn: func(context.Context, uuid.UUID) (*models.User, error) {
		return &models.User{Role: models.RoleStudent}, nil
	}}
	r := newAuthRouter(jwtService, loader)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"invalid token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	token, err := jwtService.Generate(uuid.New().String(), uuid.New(), "gone@campus.example", "student")
	require.NoError(t, err)

	loader := &mockLoader{GetByIDFn: func(context.Context, uuid.UUID) (*models.User, error) {
		return nil, errors.New("no rows in result set")
	}}

	w := doGet(newAuthRouter(jwtService, loader), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	token, err := jwtService.Generate(uuid.New().String(), uuid.New(), "s@campus.example", "student")
	require.NoError(t, err)

	loader := &mockLoader{GetByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
		return &models.User{ID: id, Role: models.RoleStudent}, nil
	}}

	w := doGet(newAuthRouter(jwtService, loader, RequireRole(models.RoleAdmin)), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(newAuthRouter(jwtService, loader, RequireRole(models.RoleAdmin, models.RoleStudent)), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuthProceedsAnonymously(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := auth.NewJWTService("test-secret", 1)
	loader := &mockLoader{GetByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
		return &models.User{ID: id, Role: models.RoleStudent}, nil
	}}

	r := gin.New()
	r.GET("/browse", OptionalAuth(jwtService, loader), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"anonymous": auth.CurrentUser(c) == nil})
	})

	req := httptest.NewRequest(http.MethodGet, "/browse", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"anonymous":true`)

	token, err := jwtService.Generate(uuid.New().String(), uuid.New(), "a@b.c", "student")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/browse", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"anonymous":false`)
}
