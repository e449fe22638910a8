package users

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/campus-hub/backend/internal/auth"
	"github.com/campus-hub/backend/internal/authz"
	"github.com/campus-hub/backend/internal/models"
	"github.com/campus-hub/backend/internal/realtime"
	"github.com/campus-hub/backend/pkg/response"
)

// pgForeignKeyViolation is the PostgreSQL error code for a missing referenced row.
const pgForeignKeyViolation = "23503"

// UpdateRoleRequest is the body for PATCH /users/:id/role. ClubID is only
// meaningful (and only accepted) with role club_staff.
type UpdateRoleRequest struct {
	Role   string  `json:"role" binding:"required"`
	ClubID *string `json:"club_id"`
}

// Store is the directory surface the admin endpoints need.
type Store interface {
	List(ctx context.Context) ([]models.UserPublic, error)
	UpdateRoleAndClub(ctx context.Context, id uuid.UUID, role models.Role, clubID *uuid.UUID) (*models.User, error)
}

// Handler handles user administration HTTP endpoints.
type Handler struct {
	repo   Store
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo Store, hub *realtime.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, hub: hub, logger: logger}
}

// List handles GET /users (admin only).
func (h *Handler) List(c *gin.Context) {
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageUsers, authz.Target{}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// UpdateRole handles PATCH /users/:id/role (admin only). Changing role away
// from club_staff clears the club assignment in the same statement; changing
// to club_staff without a club leaves the user unassigned.
func (h *Handler) UpdateRole(c *gin.Context) {
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageUsers, authz.Target{}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		response.BadRequest(c, "invalid role")
		return
	}
	var clubID *uuid.UUID
	if req.ClubID != nil && *req.ClubID != "" {
		if role != models.RoleClubStaff {
			response.BadRequest(c, "club_id is only valid for club_staff")
			return
		}
		parsed, err := uuid.Parse(*req.ClubID)
		if err != nil {
			response.BadRequest(c, "invalid club_id")
			return
		}
		clubID = &parsed
	}

	user, err := h.repo.UpdateRoleAndClub(c.Request.Context(), id, role, clubID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "user not found")
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			response.BadRequest(c, "club not found")
			return
		}
		h.logger.Error("update role failed", zap.String("user_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to update role")
		return
	}

	if h.hub != nil {
		// The affected user's clients should drop their cached session copy.
		h.hub.NotifyUser(user.ID, realtime.EventSessionUpdated, user.ToPublic())
	}
	response.OK(c, user.ToPublic())
}
