package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-hub/backend/internal/models"
)

const (
	// ContextUser is the key for the resolved *models.User in gin context.
	ContextUser = "current_user"
	// ContextSessionID is the key for the opaque session ID in gin context.
	ContextSessionID = "session_id"
)

// CurrentUser returns the resolved user from gin context, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// SessionID returns the opaque session ID from gin context, or "".
func SessionID(c *gin.Context) string {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
