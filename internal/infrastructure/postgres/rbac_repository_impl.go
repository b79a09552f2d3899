package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matiasb-dev/authkeep/internal/domain/entity"
	"github.com/matiasb-dev/authkeep/internal/domain/repository"
)

// RBACRepository persists roles, permissions and the graph edges. Edge
// uniqueness rides on the composite primary keys of user_roles and
// role_permissions, so two concurrent writers for the same edge serialize in
// Postgres and the loser sees a unique violation.
type RBACRepository struct {
	db *sql.DB
}

func NewRBACRepository(db *sql.DB) *RBACRepository {
	return &RBACRepository{db: db}
}

var _ repository.RBACRepository = (*RBACRepository)(nil)

func (r *RBACRepository) CreateRole(ctx context.Context, name, guard string) (*entity.Role, error) {
	role := &entity.Role{}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO roles (name, guard_name)
		VALUES ($1, $2)
		RETURNING id, name, guard_name, created_at, updated_at
	`, name, guard)
	if err := row.Scan(&role.ID, &role.Name, &role.GuardName, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return role, nil
}

func (r *RBACRepository) GetRole(ctx context.Context, id string) (*entity.Role, error) {
	role := &entity.Role{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, guard_name, created_at, updated_at
		FROM roles
		WHERE id = $1
	`, id).Scan(&role.ID, &role.Name, &role.GuardName, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *RBACRepository) ListRoles(ctx context.Context) ([]entity.Role, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, guard_name, created_at, updated_at
		FROM roles
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.GuardName, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RBACRepository) UpdateRole(ctx context.Context, id, name string) (*entity.Role, error) {
	role := &entity.Role{}
	row := r.db.QueryRowContext(ctx, `
		UPDATE roles
		SET name = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, name, guard_name, created_at, updated_at
	`, name, id)
	if err := row.Scan(&role.ID, &role.Name, &role.GuardName, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return role, nil
}

// DeleteRole removes the role; user_roles and role_permissions edges go with
// it through ON DELETE CASCADE.
func (r *RBACRepository) DeleteRole(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM roles WHERE id = $1`, id)
}

func (r *RBACRepository) CreatePermission(ctx context.Context, name, guard string) (*entity.Permission, error) {
	perm := &entity.Permission{}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO permissions (name, guard_name)
		VALUES ($1, $2)
		RETURNING id, name, guard_name, created_at, updated_at
	`, name, guard)
	if err := row.Scan(&perm.ID, &perm.Name, &perm.GuardName, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return perm, nil
}

func (r *RBACRepository) GetPermission(ctx context.Context, id string) (*entity.Permission, error) {
	perm := &entity.Permission{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, guard_name, created_at, updated_at
		FROM permissions
		WHERE id = $1
	`, id).Scan(&perm.ID, &perm.Name, &perm.GuardName, &perm.CreatedAt, &perm.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return perm, nil
}

func (r *RBACRepository) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, guard_name, created_at, updated_at
		FROM permissions
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []entity.Permission
	for rows.Next() {
		var perm entity.Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.GuardName, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

func (r *RBACRepository) UpdatePermission(ctx context.Context, id, name string) (*entity.Permission, error) {
	perm := &entity.Permission{}
	row := r.db.QueryRowContext(ctx, `
		UPDATE permissions
		SET name = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, name, guard_name, created_at, updated_at
	`, name, id)
	if err := row.Scan(&perm.ID, &perm.Name, &perm.GuardName, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return perm, nil
}

func (r *RBACRepository) DeletePermission(ctx context.Context, id string) error {
	return r.deleteByID(ctx, `DELETE FROM permissions WHERE id = $1`, id)
}

func (r *RBACRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	return r.addEdge(ctx, edgeSpec{
		checkA: `SELECT 1 FROM users WHERE id = $1`,
		checkB: `SELECT 1 FROM roles WHERE id = $1`,
		insert: `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
	}, userID, roleID)
}

func (r *RBACRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	return r.dropEdge(ctx, edgeSpec{
		checkA: `SELECT 1 FROM users WHERE id = $1`,
		checkB: `SELECT 1 FROM roles WHERE id = $1`,
		delete: `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`,
	}, userID, roleID)
}

func (r *RBACRepository) GivePermission(ctx context.Context, roleID, permissionID string) error {
	return r.addEdge(ctx, edgeSpec{
		checkA: `SELECT 1 FROM roles WHERE id = $1`,
		checkB: `SELECT 1 FROM permissions WHERE id = $1`,
		insert: `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
	}, roleID, permissionID)
}

func (r *RBACRepository) RevokePermission(ctx context.Context, roleID, permissionID string) error {
	return r.dropEdge(ctx, edgeSpec{
		checkA: `SELECT 1 FROM roles WHERE id = $1`,
		checkB: `SELECT 1 FROM permissions WHERE id = $1`,
		delete: `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`,
	}, roleID, permissionID)
}

func (r *RBACRepository) UserRoles(ctx context.Context, userID string) ([]entity.Role, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.guard_name, r.created_at, r.updated_at
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.GuardName, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RBACRepository) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *RBACRepository) RolePermissions(ctx context.Context, roleID string) ([]entity.Permission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.guard_name, p.created_at, p.updated_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name
	`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []entity.Permission
	for rows.Next() {
		var perm entity.Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.GuardName, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// edgeSpec describes one join-table mutation: two existence checks followed by
// a single-row insert or delete.
type edgeSpec struct {
	checkA string
	checkB string
	insert string
	delete string
}

func (r *RBACRepository) addEdge(ctx context.Context, spec edgeSpec, a, b string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkExists(ctx, tx, spec.checkA, a); err != nil {
		return err
	}
	if err := checkExists(ctx, tx, spec.checkB, b); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, spec.insert, a, b); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return repository.ErrConflict
			case pgErrForeignKeyViolation:
				// Row passed checkExists but was deleted before the
				// insert landed.
				return repository.ErrNotFound
			}
		}
		return err
	}
	return tx.Commit()
}

func (r *RBACRepository) dropEdge(ctx context.Context, spec edgeSpec, a, b string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkExists(ctx, tx, spec.checkA, a); err != nil {
		return err
	}
	if err := checkExists(ctx, tx, spec.checkB, b); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, spec.delete, a, b)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return repository.ErrConflict
	}
	return tx.Commit()
}

func checkExists(ctx context.Context, tx *sql.Tx, query, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func (r *RBACRepository) deleteByID(ctx context.Context, query, id string) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}
