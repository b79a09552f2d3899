package entity

import "time"

// Role groups permissions. Many-to-many with User via user_roles and with
// Permission via role_permissions. Name is unique within a guard.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
