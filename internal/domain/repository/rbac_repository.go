package repository

import (
	"context"

	"github.com/matiasb-dev/authkeep/internal/domain/entity"
)

// RBACRepository persists the authorization graph: roles, permissions and the
// user_roles / role_permissions edges. Edge mutations are atomic: they either
// commit a single row change or fail with ErrNotFound / ErrConflict.
type RBACRepository interface {
	CreateRole(ctx context.Context, name, guard string) (*entity.Role, error)
	GetRole(ctx context.Context, id string) (*entity.Role, error)
	ListRoles(ctx context.Context) ([]entity.Role, error)
	UpdateRole(ctx context.Context, id, name string) (*entity.Role, error)
	DeleteRole(ctx context.Context, id string) error

	CreatePermission(ctx context.Context, name, guard string) (*entity.Permission, error)
	GetPermission(ctx context.Context, id string) (*entity.Permission, error)
	ListPermissions(ctx context.Context) ([]entity.Permission, error)
	UpdatePermission(ctx context.Context, id, name string) (*entity.Permission, error)
	DeletePermission(ctx context.Context, id string) error

	// AssignRole adds a (user, role) edge. ErrNotFound when either entity is
	// missing, ErrConflict when the user already holds the role.
	AssignRole(ctx context.Context, userID, roleID string) error
	// RemoveRole drops a (user, role) edge. ErrConflict when the user does not
	// hold the role.
	RemoveRole(ctx context.Context, userID, roleID string) error
	// GivePermission adds a (role, permission) edge.
	GivePermission(ctx context.Context, roleID, permissionID string) error
	// RevokePermission drops a (role, permission) edge.
	RevokePermission(ctx context.Context, roleID, permissionID string) error

	UserRoles(ctx context.Context, userID string) ([]entity.Role, error)
	// UserPermissions returns the distinct permission names reachable through
	// all roles the user holds.
	UserPermissions(ctx context.Context, userID string) ([]string, error)
	RolePermissions(ctx context.Context, roleID string) ([]entity.Permission, error)
}
