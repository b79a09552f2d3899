package application

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/matiasb-dev/authkeep/internal/domain/entity"
	repo "github.com/matiasb-dev/authkeep/internal/domain/repository"
)

// RBACService operates on the authorization graph. It trims and validates
// input, then delegates to the repository; uniqueness and edge invariants are
// enforced by the database so concurrent writers serialize there.
//
// Reads are never cached: role and permission checks reflect the latest
// committed grants on every call.
type RBACService struct {
	Repo  repo.RBACRepository
	Guard string
}

func NewRBACService(r repo.RBACRepository, guard string) *RBACService {
	if guard == "" {
		guard = "api"
	}
	return &RBACService{Repo: r, Guard: guard}
}

func (s *RBACService) CreateRole(ctx context.Context, name string) (*entity.Role, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreateRole(ctx, name, s.Guard)
}

func (s *RBACService) GetRole(ctx context.Context, id string) (*entity.Role, error) {
	return s.Repo.GetRole(ctx, id)
}

func (s *RBACService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.Repo.ListRoles(ctx)
}

func (s *RBACService) UpdateRole(ctx context.Context, id, name string) (*entity.Role, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.Repo.UpdateRole(ctx, id, name)
}

func (s *RBACService) DeleteRole(ctx context.Context, id string) error {
	return s.Repo.DeleteRole(ctx, id)
}

func (s *RBACService) CreatePermission(ctx context.Context, name string) (*entity.Permission, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreatePermission(ctx, name, s.Guard)
}

func (s *RBACService) GetPermission(ctx context.Context, id string) (*entity.Permission, error) {
	return s.Repo.GetPermission(ctx, id)
}

func (s *RBACService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return s.Repo.ListPermissions(ctx)
}

func (s *RBACService) UpdatePermission(ctx context.Context, id, name string) (*entity.Permission, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	return s.Repo.UpdatePermission(ctx, id, name)
}

func (s *RBACService) DeletePermission(ctx context.Context, id string) error {
	return s.Repo.DeletePermission(ctx, id)
}

// AssignRole adds the (user, role) edge. Fails with repository.ErrConflict
// when the user already holds the role; never a silent no-op.
func (s *RBACService) AssignRole(ctx context.Context, userID, roleID string) error {
	return s.Repo.AssignRole(ctx, userID, roleID)
}

// RemoveRole drops the (user, role) edge. Fails with repository.ErrConflict
// when the user does not hold the role.
func (s *RBACService) RemoveRole(ctx context.Context, userID, roleID string) error {
	return s.Repo.RemoveRole(ctx, userID, roleID)
}

func (s *RBACService) GivePermission(ctx context.Context, roleID, permissionID string) error {
	return s.Repo.GivePermission(ctx, roleID, permissionID)
}

func (s *RBACService) RevokePermission(ctx context.Context, roleID, permissionID string) error {
	return s.Repo.RevokePermission(ctx, roleID, permissionID)
}

func (s *RBACService) UserRoles(ctx context.Context, userID string) ([]entity.Role, error) {
	return s.Repo.UserRoles(ctx, userID)
}

// EffectivePermissions returns the deduplicated union of permission names
// reachable through every role the user holds.
func (s *RBACService) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	return s.Repo.UserPermissions(ctx, userID)
}

func (s *RBACService) RolePermissions(ctx context.Context, roleID string) ([]entity.Permission, error) {
	return s.Repo.RolePermissions(ctx, roleID)
}

// HasRole reports whether the user currently holds the named role.
func (s *RBACService) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	roles, err := s.Repo.UserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}

// HasAnyRole reports whether the user holds at least one of the named roles.
func (s *RBACService) HasAnyRole(ctx context.Context, userID string, roleNames ...string) (bool, error) {
	roles, err := s.Repo.UserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		for _, want := range roleNames {
			if r.Name == want {
				return true, nil
			}
		}
	}
	return false, nil
}

// HasPermission reports whether the named permission is in the user's
// effective permission set.
func (s *RBACService) HasPermission(ctx context.Context, userID, permName string) (bool, error) {
	return s.HasAnyPermission(ctx, userID, permName)
}

// HasAnyPermission reports whether the user's effective permission set
// intersects the given names.
func (s *RBACService) HasAnyPermission(ctx context.Context, userID string, permNames ...string) (bool, error) {
	perms, err := s.Repo.UserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		for _, want := range permNames {
			if p == want {
				return true, nil
			}
		}
	}
	return false, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 3 || n > 30 {
		return "", ErrInvalidName
	}
	return name, nil
}
