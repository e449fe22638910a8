package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/backend/internal/auth"
	"github.com/campus-hub/backend/internal/models"
)

type mockStore struct {
	ListFn              func(ctx context.Context) ([]models.UserPublic, error)
	UpdateRoleAndClubFn func(ctx context.Context, id uuid.UUID, role models.Role, clubID *uuid.UUID) (*models.User, error)
}

func (m *mockStore) List(ctx context.Context) ([]models.UserPublic, error) {
	return m.ListFn(ctx)
}

func (m *mockStore) UpdateRoleAndClub(ctx context.Context, id uuid.UUID, role models.Role, clubID *uuid.UUID) (*models.User, error) {
	return m.UpdateRoleAndClubFn(ctx, id, role, clubID)
}

func newUsersRouter(store Store, caller *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil, nil)
	r := gin.New()
	inject := func(c *gin.Context) {
		if caller != nil {
			c.Set(auth.ContextUser, caller)
		}
		c.Next()
	}
	r.GET("/users", inject, h.List)
	r.PATCH("/users/:id/role", inject, h.UpdateRole)
	return r
}

func patchRole(r *gin.Engine, userID string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPatch, "/users/"+userID+"/role", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListRequiresAdmin(t *testing.T) {
	store := &mockStore{ListFn: func(context.Context) ([]models.UserPublic, error) {
		return []models.UserPublic{{ID: uuid.New(), Email: "a@campus.example"}}, nil
	}}

	student := &models.User{ID: uuid.New(), Role: models.RoleStudent}
	w := httptest.NewRecorder()
	newUsersRouter(store, student).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	w = httptest.NewRecorder()
	newUsersRouter(store, admin).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@campus.example")
}

func TestUpdateRoleValidation(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	clubID := uuid.New().String()
	store := &mockStore{UpdateRoleAndClubFn: func(context.Context, uuid.UUID, models.Role, *uuid.UUID) (*models.User, error) {
		t.Fatal("store must not be reached on validation failure")
		return nil, nil
	}}
	r := newUsersRouter(store, admin)

	tests := []struct {
		name   string
		userID string
		body   interface{}
		want   int
	}{
		{"invalid user id", "not-a-uuid", UpdateRoleRequest{Role: "admin"}, http.StatusBadRequest},
		{"missing role", uuid.New().String(), map[string]string{}, http.StatusBadRequest},
		{"unknown role", uuid.New().String(), UpdateRoleRequest{Role: "superuser"}, http.StatusBadRequest},
		{"club_id with student role", uuid.New().String(), UpdateRoleRequest{Role: "student", ClubID: &clubID}, http.StatusBadRequest},
		{"club_id with admin role", uuid.New().String(), UpdateRoleRequest{Role: "admin", ClubID: &clubID}, http.StatusBadRequest},
		{"malformed club_id", uuid.New().String(), map[string]interface{}{"role": "club_staff", "club_id": "nope"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := patchRole(r, tt.userID, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestUpdateRoleForbiddenForNonAdmins(t *testing.T) {
	store := &mockStore{UpdateRoleAndClubFn: func(context.Context, uuid.UUID, models.Role, *uuid.UUID) (*models.User, error) {
		t.Fatal("store must not be reached without authorization")
		return nil, nil
	}}

	for _, caller := range []*models.User{
		nil,
		{ID: uuid.New(), Role: models.RoleStudent},
		{ID: uuid.New(), Role: models.RoleClubStaff},
	} {
		w := patchRole(newUsersRouter(store, caller), uuid.New().String(), UpdateRoleRequest{Role: "admin"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	}
}

func TestUpdateRoleClearsClubForNonStaffRoles(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	targetID := uuid.New()
	var gotClubID *uuid.UUID
	store := &mockStore{UpdateRoleAndClubFn: func(_ context.Context, id uuid.UUID, role models.Role, clubID *uuid.UUID) (*models.User, error) {
		require.Equal(t, targetID, id)
		require.Equal(t, models.RoleAdmin, role)
		gotClubID = clubID
		return &models.User{ID: id, Role: role}, nil
	}}

	w := patchRole(newUsersRouter(store, admin), targetID.String(), UpdateRoleRequest{Role: "admin"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, gotClubID, "non-staff role change must carry no club assignment")
}

func TestUpdateRoleAssignsClubForStaff(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	clubID := uuid.New()
	clubStr := clubID.String()
	store := &mockStore{UpdateRoleAndClubFn: func(_ context.Context, id uuid.UUID, role models.Role, got *uuid.UUID) (*models.User, error) {
		require.Equal(t, models.RoleClubStaff, role)
		require.NotNil(t, got)
		require.Equal(t, clubID, *got)
		return &models.User{ID: id, Role: role, ClubID: got}, nil
	}}

	w := patchRole(newUsersRouter(store, admin), uuid.New().String(), UpdateRoleRequest{Role: "club_staff", ClubID: &clubStr})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), clubStr)
}

func TestUpdateRoleStoreErrorMapping(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	clubStr := uuid.New().String()

	tests := []struct {
		name string
		err  error
		body UpdateRoleRequest
		want int
	}{
		{"unknown user", pgx.ErrNoRows, UpdateRoleRequest{Role: "admin"}, http.StatusNotFound},
		{"unknown club", &pgconn.PgError{Code: pgForeignKeyViolation}, UpdateRoleRequest{Role: "club_staff", ClubID: &clubStr}, http.StatusBadRequest},
		{"other failure", assert.AnError, UpdateRoleRequest{Role: "admin"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{UpdateRoleAndClubFn: func(context.Context, uuid.UUID, models.Role, *uuid.UUID) (*models.User, error) {
				return nil, tt.err
			}}
			w := patchRole(newUsersRouter(store, admin), uuid.New().String(), tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
