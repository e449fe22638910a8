package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campus-hub/backend/internal/auth"
	"github.com/campus-hub/backend/internal/models"
	"github.com/campus-hub/backend/pkg/response"
)

// UserLoader fetches the authoritative user record for a token's user ID.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates the session token and loads the user fresh from the
// directory, so a role change by an admin takes effect on the next request
// regardless of what the token claims.
func Auth(jwtService *auth.JWTService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtService)
		if !ok {
			c.Abort()
			return
		}
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Unauthorized(c, "session user no longer exists")
			c.Abort()
			return
		}
		c.Set(auth.ContextUser, user)
		c.Set(auth.ContextSessionID, claims.SessionID)
		c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present and proceeds
// anonymously otherwise. Browse endpoints use it so unauthenticated reads
// keep working.
func OptionalAuth(jwtService *auth.JWTService, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			c.Next()
			return
		}
		if user, err := users.GetByID(c.Request.Context(), claims.UserID); err == nil {
			c.Set(auth.ContextUser, user)
			c.Set(auth.ContextSessionID, claims.SessionID)
		}
		c.Next()
	}
}

// RequireRole returns a middleware that allows only the given roles.
// Handlers still re-check via the authorization gate; this is the outer
// layer of the defense in depth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwtService *auth.JWTService) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		response.Unauthorized(c, "missing authorization header")
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "invalid authorization header")
		return nil, false
	}
	claims, err := jwtService.Validate(parts[1])
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return nil, false
	}
	return claims, true
}
