package controller

import (
	"net/http"

	"github.com/academiapadel/backend/internal/config"
	"github.com/academiapadel/backend/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	userIDHeader = "X-User-ID"
	roleHeader   = "X-Role"

	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxCaps   = "caps"
)

// identity resolves the caller once per request. In live mode the profile
// behind X-User-ID must exist; demo mode trusts the headers so the engine
// can run without an identity provider in front of it.
func (h *Handler) identity(mode config.AuthMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)

		var role model.UserRole
		switch mode {
		case config.AuthModeDemo:
			if userID == "" {
				userID = "demo-user"
			}
			role = model.UserRole(c.GetHeader(roleHeader))
			if !role.IsValid() {
				role = model.RoleAdulto
			}
		default:
			if userID == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
				return
			}
			profile, err := h.users.GetProfile(c.Request.Context(), userID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
				return
			}
			role = profile.Role
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Set(ctxCaps, model.ResolveCapabilities(role))
		c.Next()
	}
}

func uid(c *gin.Context) string {
	v, _ := c.Get(ctxUserID)
	return v.(string)
}

func callerRole(c *gin.Context) model.UserRole {
	v, _ := c.Get(ctxRole)
	return v.(model.UserRole)
}

func callerCaps(c *gin.Context) model.Capabilities {
	v, _ := c.Get(ctxCaps)
	return v.(model.Capabilities)
}
