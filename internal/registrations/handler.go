package registrations

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-hub/backend/internal/auth"
	"github.com/campus-hub/backend/internal/authz"
	"github.com/campus-hub/backend/internal/models"
	"github.com/campus-hub/backend/pkg/queue"
	"github.com/campus-hub/backend/pkg/response"
)

// Store persists registrations.
type Store interface {
	Register(ctx context.Context, userID, eventID uuid.UUID) (*models.Registration, bool, error)
	Unregister(ctx context.Context, userID, eventID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error)
	ListUsersForEvent(ctx context.Context, eventID uuid.UUID) ([]models.UserPublic, error)
}

// EventGetter loads events for existence and ownership checks. Returns
// (nil, nil) when the event does not exist.
type EventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	repo      Store
	eventRepo EventGetter
	jobs      *queue.Queue
	logger    *zap.Logger
}

// NewHandler creates a registrations handler. jobs may be nil when the
// worker queue is not configured.
func NewHandler(repo Store, eventRepo EventGetter, jobs *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, jobs: jobs, logger: logger}
}

// Register handles POST /events/:id/registrations (student, self).
// Registering twice is a no-op success.
func (h *Handler) Register(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "sign in required")
		return
	}
	if d := authz.Can(user, authz.OpRegisterSelf, authz.Target{UserID: &user.ID}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil || event == nil {
		response.NotFound(c, "event not found")
		return
	}

	reg, created, err := h.repo.Register(c.Request.Context(), user.ID, eventID)
	if err != nil {
		h.logger.Error("register failed", zap.String("user_id", user.ID.String()),
			zap.String("event_id", eventID.String()), zap.Error(err))
		response.Internal(c, "failed to register")
		return
	}

	if created && h.jobs != nil {
		payload := queue.RegistrationEmailPayload{
			RegistrationID: reg.ID,
			EventID:        event.ID,
			EventName:      event.Name,
			RecipientEmail: user.Email,
			RecipientName:  user.DisplayName,
		}
		if err := h.jobs.Enqueue(c.Request.Context(), queue.QueueEmails, queue.JobTypeRegistrationEmail, payload); err != nil {
			// Registration stands; the confirmation email is best effort.
			h.logger.Warn("enqueue confirmation email failed", zap.Error(err))
		}
	}

	if created {
		response.Created(c, reg)
		return
	}
	response.OK(c, reg)
}

// Unregister handles DELETE /events/:id/registrations (student, self).
// Unregistering when not registered succeeds without effect.
func (h *Handler) Unregister(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "sign in required")
		return
	}
	if d := authz.Can(user, authz.OpRegisterSelf, authz.Target{UserID: &user.ID}); !d.Allowed {
		response.Forbidden(c, d.Reason)
		return
	}
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Unregister(c.Request.Context(), user.ID, eventID); err != nil {
		response.Internal(c, "failed to unregister")
		return
	}
	response.NoContent(c)
}

// ListMine handles GET /me/registrations.
func (h *Handler) ListMine(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "sign in required")
		return
	}
	list, err := h.repo.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, list)
}

// ListRegistrants handles GET /events/:id/registrants (staff of the owning
// club, or admin).
func (h *Handler) ListRegistrants(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil || event == nil {
		response.NotFound(c, "event not found")
		return
	}
	user := auth.CurrentUser(c)
	if user == nil || user.Role != models.RoleAdmin {
		if d := authz.Can(user, authz.OpManageClubEvents, authz.Target{ClubID: &event.ClubID}); !d.Allowed {
			response.Forbidden(c, d.Reason)
			return
		}
	}
	list, err := h.repo.ListUsersForEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list registrants")
		return
	}
	response.OK(c, list)
}
