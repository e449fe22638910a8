package clubs

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-hub/backend/internal/auth"
	"github.com/campus-hub/backend/internal/authz"
	"github.com/campus-hub/backend/internal/models"
	"github.com/campus-hub/backend/internal/realtime"
	"github.com/campus-hub/backend/pkg/response"
	"github.com/campus-hub/backend/pkg/storage"
)

// CreateRequest is the body for POST /clubs.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateRequest is the body for PATCH /clubs/:id.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Handler handles club HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewHandler creates a clubs handler. s3 may be nil when image storage is
// not configured.
func NewHandler(repo *Repository, s3 *storage.S3, hub *realtime.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, hub: hub, logger: logger}
}

// List handles GET /clubs (public browse).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list clubs")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /clubs/:id (public browse).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid club id")
		return
	}
	club, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load club")
		return
	}
	if club == nil {
		response.NotFound(c, "club not found")
		return
	}
	response.OK(c, club)
}

// Create handles POST /clubs (admin only).
func (h *Handler) Create(c *gin.Context) {
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageClubs, authz.Target{}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	club := &models.Club{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if club.Name == "" {
		response.BadRequest(c, "name required")
		return
	}
	if err := h.repo.Create(c.Request.Context(), club); err != nil {
		response.Internal(c, "failed to create club")
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(realtime.EventClubCreated, club)
	}
	response.Created(c, club)
}

// Update handles PATCH /clubs/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageClubs, authz.Target{}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid club id")
		return
	}
	club, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || club == nil {
		response.NotFound(c, "club not found")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			response.BadRequest(c, "name cannot be empty")
			return
		}
		club.Name = name
	}
	if req.Description != nil {
		club.Description = *req.Description
	}
	if err := h.repo.Update(c.Request.Context(), club); err != nil {
		response.Internal(c, "failed to update club")
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(realtime.EventClubUpdated, club)
	}
	response.OK(c, club)
}

// Delete handles DELETE /clubs/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageClubs, authz.Target{}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid club id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete club")
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(realtime.EventClubDeleted, gin.H{"id": id})
	}
	response.NoContent(c)
}

// UploadImage handles POST /clubs/:id/image (admin only, multipart "file").
func (h *Handler) UploadImage(c *gin.Context) {
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageClubs, authz.Target{}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	if h.s3 == nil {
		response.Internal(c, "image storage not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid club id")
		return
	}
	club, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || club == nil {
		response.NotFound(c, "club not found")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file required")
		return
	}
	if fileHeader.Size > storage.MaxImageSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer f.Close()

	key, err := h.s3.UploadImage(c.Request.Context(), storage.FolderClubs, id.String(), fileHeader.Filename, contentType, f)
	if err != nil {
		h.logger.Error("club image upload failed", zap.String("club_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to upload image")
		return
	}
	url, err := h.s3.PresignGetURL(c.Request.Context(), key)
	if err != nil {
		response.Internal(c, "failed to generate image url")
		return
	}
	if err := h.repo.SetImageURL(c.Request.Context(), id, url); err != nil {
		response.Internal(c, "failed to save image url")
		return
	}
	response.OK(c, gin.H{"image_url": url})
}
