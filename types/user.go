package types

import (
	"strings"
	"time"
)

// Roles assignable to an account.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. May be empty for accounts
	// registered without one.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the system,
	// either "admin" or "user".
	Role string `json:"role" db:"role"`

	// IsStaff and IsSuperuser grant admin capability independently of
	// Role. They exist for operator-created accounts (see the
	// createadmin command) and carry over rows imported from the
	// previous deployment.
	IsStaff     bool `json:"-" db:"is_staff"`
	IsSuperuser bool `json:"-" db:"is_superuser"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user may perform privileged mutations.
// Staff and superuser flags count as admin regardless of the stored role.
func (u User) IsAdmin() bool {
	return u.IsSuperuser || u.IsStaff || strings.EqualFold(u.Role, RoleAdmin)
}

// EffectiveRole is the role reported to clients: staff and superuser
// accounts are presented as "admin" even when their stored role is not.
func (u User) EffectiveRole() string {
	if u.IsSuperuser || u.IsStaff {
		return RoleAdmin
	}
	return u.Role
}
