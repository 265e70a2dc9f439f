package core

import "time"

// User roles. Staff can read everything and register transactions; only
// admins manage the catalogue, users, and the client module's reference data.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may perform administrative actions.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
