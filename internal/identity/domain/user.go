package domain

import (
	"errors"
	"time"
)

// Role is a user's authorization role, evaluated by the route policy.
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleWriter, RoleAdmin:
		return true
	}
	return false
}

// User is an API user with a local password.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
// An empty role defaults to RoleReader.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleReader
	}
	if !u.Role.Valid() {
		return errors.New("unknown role")
	}
	return nil
}
