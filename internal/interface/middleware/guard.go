package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/matiasb-dev/authkeep/internal/application"
	"github.com/matiasb-dev/authkeep/pkg/response"
)

// RequireRoles allows the request through when the authenticated user holds
// at least one of the named roles. Must run after Auth.
func RequireRoles(rbac *application.RBACService, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		ok, err := rbac.HasAnyRole(c.Request.Context(), userID, roles...)
		if err != nil {
			response.Forbidden(c, "access denied")
			return
		}
		if !ok {
			response.Forbidden(c, "you do not have the required role")
			return
		}
		c.Next()
	}
}

// RequirePermissions allows the request through when the authenticated user
// holds at least one of the named permissions through any of their roles.
// Must run after Auth.
func RequirePermissions(rbac *application.RBACService, perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		ok, err := rbac.HasAnyPermission(c.Request.Context(), userID, perms...)
		if err != nil {
			response.Forbidden(c, "access denied")
			return
		}
		if !ok {
			response.Forbidden(c, "you do not have the required permission")
			return
		}
		c.Next()
	}
}
