package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-hub/backend/internal/identity"
	"github.com/campus-hub/backend/internal/models"
	"github.com/campus-hub/backend/internal/session"
	"github.com/campus-hub/backend/pkg/response"
)

// UserFinder is the slice of the user directory the local login path needs.
type UserFinder interface {
	// FindByEmail returns (nil, nil) when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// CreateSessionRequest is the body for POST /auth/session.
type CreateSessionRequest struct {
	ProviderToken string `json:"provider_token" binding:"required"`
}

// LoginRequest is the body for POST /auth/login (local bootstrap accounts).
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with the app session token.
type TokenResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	provider identity.Provider
	sessions *session.Manager
	users    UserFinder
	jwt      *JWTService
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(provider identity.Provider, sessions *session.Manager, users UserFinder, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{provider: provider, sessions: sessions, users: users, jwt: jwt, logger: logger}
}

// CreateSession handles POST /auth/session: verifies the identity-provider
// token, reconciles it to an application user (creating a student record on
// first sight), and issues an app session token.
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	sessionID := uuid.New().String()
	rec := h.sessions.Get(c.Request.Context(), sessionID)
	rec.MarkAuthenticating()

	id, err := h.provider.Verify(c.Request.Context(), req.ProviderToken)
	if err != nil {
		h.sessions.Remove(sessionID)
		response.Unauthorized(c, "sign-in failed: invalid provider token")
		return
	}

	st, err := rec.SignIn(c.Request.Context(), id.ExternalID, id.Email, id.DisplayName)
	if err != nil {
		h.sessions.Remove(sessionID)
		response.Internal(c, "sign-in interrupted")
		return
	}
	if st.Phase != session.PhaseSignedIn || st.User == nil {
		h.sessions.Remove(sessionID)
		h.logger.Error("reconciliation did not resolve a user",
			zap.String("phase", st.Phase.String()), zap.Error(st.Err))
		response.Internal(c, "directory unavailable, try again")
		return
	}

	h.issueToken(c, sessionID, st)
}

// Login handles POST /auth/login for local bootstrap accounts (bcrypt
// password stored in the directory). Issues the same session as SSO sign-in.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil || user.Password == "" || !CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	sessionID := uuid.New().String()
	rec := h.sessions.Get(c.Request.Context(), sessionID)
	st, err := rec.SignIn(c.Request.Context(), "local:"+user.ID.String(), user.Email, user.DisplayName)
	if err != nil || st.Phase != session.PhaseSignedIn || st.User == nil {
		h.sessions.Remove(sessionID)
		response.Internal(c, "sign-in failed, try again")
		return
	}

	h.issueToken(c, sessionID, st)
}

// GetSession handles GET /auth/session: the current resolved user, loaded
// fresh from the directory by the auth middleware.
func (h *Handler) GetSession(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "no active session")
		return
	}
	response.OK(c, gin.H{"user": user.ToPublic(), "is_loading": false})
}

// DeleteSession handles DELETE /auth/session: clears the resolved user and
// the session cache. Works even when the user record no longer exists, so
// only the token itself is validated here.
func (h *Handler) DeleteSession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "invalid authorization header")
		return
	}
	claims, err := h.jwt.Validate(parts[1])
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}

	rec := h.sessions.Get(c.Request.Context(), claims.SessionID)
	if _, err := rec.SignOut(c.Request.Context()); err != nil {
		response.Internal(c, "sign-out interrupted")
		return
	}
	h.sessions.Remove(claims.SessionID)
	response.NoContent(c)
}

func (h *Handler) issueToken(c *gin.Context, sessionID string, st session.State) {
	token, err := h.jwt.Generate(sessionID, st.User.ID, st.User.Email, string(st.User.Role))
	if err != nil {
		h.sessions.Remove(sessionID)
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: st.User.ToPublic()})
}
