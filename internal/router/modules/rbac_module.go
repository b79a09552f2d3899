package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/matiasb-dev/authkeep/internal/application"
	handlers "github.com/matiasb-dev/authkeep/internal/interface/http"
	"github.com/matiasb-dev/authkeep/internal/interface/middleware"
)

// Management role and permission names. The seeder creates these.
const (
	RoleManager    = "manager"
	RoleSuperadmin = "superadmin"

	PermRoleManage       = "role manage"
	PermPermissionManage = "permission manage"
)

// RBACModule mounts role and permission management under /api/role and
// /api/permission. Every route requires a manager or superadmin role plus a
// management permission; permission routes also accept "role manage" so a
// role administrator can manage both sides of the graph.
type RBACModule struct {
	Roles       *handlers.RoleHandler
	Permissions *handlers.PermissionHandler
	Tokens      *application.TokenService
	RBAC        *application.RBACService
}

func NewRBACModule(roles *handlers.RoleHandler, perms *handlers.PermissionHandler, tokens *application.TokenService, rbac *application.RBACService) *RBACModule {
	return &RBACModule{Roles: roles, Permissions: perms, Tokens: tokens, RBAC: rbac}
}

func (m *RBACModule) Register(rg *gin.RouterGroup) {
	role := rg.Group("/role")
	role.Use(
		middleware.Auth(m.Tokens),
		middleware.RequireRoles(m.RBAC, RoleManager, RoleSuperadmin),
		middleware.RequirePermissions(m.RBAC, PermRoleManage),
	)
	{
		role.GET("", m.Roles.Index)
		role.POST("", m.Roles.Store)
		role.GET("/:id", m.Roles.Show)
		role.PUT("/:id", m.Roles.Update)
		role.DELETE("/:id", m.Roles.Destroy)

		role.POST("/assignRole", m.Roles.AssignRole)
		role.POST("/removeRole", m.Roles.RemoveRole)
		role.POST("/givePermission", m.Roles.GivePermission)
		role.POST("/revokePermission", m.Roles.RevokePermission)
	}

	perm := rg.Group("/permission")
	perm.Use(
		middleware.Auth(m.Tokens),
		middleware.RequireRoles(m.RBAC, RoleManager, RoleSuperadmin),
		middleware.RequirePermissions(m.RBAC, PermPermissionManage, PermRoleManage),
	)
	{
		perm.GET("", m.Permissions.Index)
		perm.POST("", m.Permissions.Store)
		perm.GET("/:id", m.Permissions.Show)
		perm.PUT("/:id", m.Permissions.Update)
		perm.DELETE("/:id", m.Permissions.Destroy)
	}
}
