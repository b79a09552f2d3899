package entity

import "time"

// Permission is a fine-grained capability referenced by roles.
// Name is unique within a guard.
type Permission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
