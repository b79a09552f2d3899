package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/matiasb-dev/authkeep/config"
	"github.com/matiasb-dev/authkeep/pkg/helpers"
)

// Seeds a superadmin account plus the management roles and permissions the
// role/permission routes are guarded by.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "superadmin@example.com"
	password := "secret1"
	name := "superadmin"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password, name, avatar_url)
		VALUES ($1, $2, $3, '')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	roleIDs := map[string]string{}
	for _, role := range []string{"manager", "superadmin"} {
		var id string
		if err := db.QueryRow(`
			INSERT INTO roles (name, guard_name) VALUES ($1, $2)
			ON CONFLICT (name, guard_name) DO UPDATE SET updated_at = now()
			RETURNING id
		`, role, cfg.DefaultGuard).Scan(&id); err != nil {
			log.Fatalf("failed to upsert role %q: %v", role, err)
		}
		roleIDs[role] = id
	}

	permIDs := map[string]string{}
	for _, perm := range []string{"role manage", "permission manage"} {
		var id string
		if err := db.QueryRow(`
			INSERT INTO permissions (name, guard_name) VALUES ($1, $2)
			ON CONFLICT (name, guard_name) DO UPDATE SET updated_at = now()
			RETURNING id
		`, perm, cfg.DefaultGuard).Scan(&id); err != nil {
			log.Fatalf("failed to upsert permission %q: %v", perm, err)
		}
		permIDs[perm] = id
	}

	// Superadmin gets every management permission, manager only role manage.
	grants := map[string][]string{
		"superadmin": {"role manage", "permission manage"},
		"manager":    {"role manage"},
	}
	for role, perms := range grants {
		for _, perm := range perms {
			if _, err := db.Exec(`
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2)
				ON CONFLICT (role_id, permission_id) DO NOTHING
			`, roleIDs[role], permIDs[perm]); err != nil {
				log.Fatalf("failed to grant %q to %q: %v", perm, role, err)
			}
		}
	}

	if _, err := db.Exec(`
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roleIDs["superadmin"]); err != nil {
		log.Fatalf("failed to assign superadmin role: %v", err)
	}
	fmt.Println("management roles, permissions and grants ensured")
}
