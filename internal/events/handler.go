package events

import (
	"strings"
	"time"

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

// CreateRequest is the body for POST /events. ClubID must be the caller's
// own club.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"` // RFC 3339
	Location    string `json:"location"`
	ClubID      string `json:"club_id" binding:"required,uuid"`
}

// UpdateRequest is the body for PATCH /events/:id.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewHandler creates an events handler. s3 may be nil when image storage is
// not configured.
func NewHandler(repo *Repository, s3 *storage.S3, hub *realtime.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, hub: hub, logger: logger}
}

// List handles GET /events (public browse). ?club_id= filters to one club.
func (h *Handler) List(c *gin.Context) {
	var clubID *uuid.UUID
	if s := c.Query("club_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid club_id")
			return
		}
		clubID = &id
	}
	list, err := h.repo.List(c.Request.Context(), clubID)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id (public browse).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load event")
		return
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Create handles POST /events (club staff, own club only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	clubID, err := uuid.Parse(req.ClubID)
	if err != nil {
		response.BadRequest(c, "invalid club_id")
		return
	}
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageClubEvents, authz.Target{ClubID: &clubID}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.BadRequest(c, "invalid date")
		return
	}
	e := &models.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		ClubID:      clubID,
	}
	if e.Name == "" {
		response.BadRequest(c, "name required")
		return
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event failed", zap.String("club_id", clubID.String()), zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(realtime.EventEventCreated, e)
	}
	response.Created(c, e)
}

// Update handles PATCH /events/:id (club staff, own club only).
func (h *Handler) Update(c *gin.Context) {
	e, ok := h.ownedEvent(c)
	if !ok {
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
		e.Name = name
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			response.BadRequest(c, "invalid date")
			return
		}
		e.Date = date
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if err := h.repo.Update(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(realtime.EventEventUpdated, e)
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id (club staff, own club only).
func (h *Handler) Delete(c *gin.Context) {
	e, ok := h.ownedEvent(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), e.ID); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(realtime.EventEventDeleted, gin.H{"id": e.ID})
	}
	response.NoContent(c)
}

// UploadImage handles POST /events/:id/image (club staff, own club only,
// multipart "file").
func (h *Handler) UploadImage(c *gin.Context) {
	e, ok := h.ownedEvent(c)
	if !ok {
		return
	}
	if h.s3 == nil {
		response.Internal(c, "image storage not configured")
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

	key, err := h.s3.UploadImage(c.Request.Context(), storage.FolderEvents, e.ID.String(), fileHeader.Filename, contentType, f)
	if err != nil {
		h.logger.Error("event image upload failed", zap.String("event_id", e.ID.String()), zap.Error(err))
		response.Internal(c, "failed to upload image")
		return
	}
	url, err := h.s3.PresignGetURL(c.Request.Context(), key)
	if err != nil {
		response.Internal(c, "failed to generate image url")
		return
	}
	if err := h.repo.SetImageURL(c.Request.Context(), e.ID, url); err != nil {
		response.Internal(c, "failed to save image url")
		return
	}
	response.OK(c, gin.H{"image_url": url})
}

// ownedEvent loads the :id event and verifies the caller may manage its
// club's events. Writes the error response itself on failure.
func (h *Handler) ownedEvent(c *gin.Context) (*models.Event, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return nil, false
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load event")
		return nil, false
	}
	if e == nil {
		response.NotFound(c, "event not found")
		return nil, false
	}
	if d := authz.Can(auth.CurrentUser(c), authz.OpManageClubEvents, authz.Target{ClubID: &e.ClubID}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return nil, false
	}
	return e, true
}
