package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the fixed role a user account holds. A role never changes the set
// of operations it unlocks at runtime.
type Role string

const (
	RolePatient Role = "patient"
	RoleHCP     Role = "hcp"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleHCP, RoleAdmin:
		return true
	}
	return false
}

// User maps to the app_user table.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Role      Role      `db:"role" json:"role"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
