package domain

import (
	"strings"
	"time"
)

// UserID is the store-assigned surrogate key of a user.
type UserID int64

// Role enumerates access levels. Only the constants below are valid.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleAdmin    Role = "Admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleEmployee, RoleAdmin}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin:
		return true
	default:
		return false
	}
}

// NormalizeRole maps free-form shell input ("admin", "EMPLOYEE") onto the
// canonical spelling. Unknown input is returned unchanged so the core can
// reject it.
func NormalizeRole(s string) Role {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r
		}
	}
	return Role(s)
}

// User is an identity record. PasswordHash never leaves the service layer.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity returns the caller view of the user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}
