// Package auth manages operator accounts, password verification, sessions,
// and access tokens.
package auth

import "time"

// Role gates access to administrative operations.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Valid reports whether the role is one the system knows.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator
}

// User is an operator account. Only the bcrypt hash of the password is ever
// stored.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Session is a server-side login session. Logout deletes it, which revokes
// any token that references it.
type Session struct {
	ID        string
	Username  string
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
