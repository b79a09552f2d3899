package entity

import "time"

// User is the aggregate root for the identity domain.
// Password holds a bcrypt hash; plaintext never leaves the registration path.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
