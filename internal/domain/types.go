package domain

import "strings"

// ID is used across domain entities.
type ID int64

// Role of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Roles lists assignable roles in display order.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles() {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Token  string `json:"-"`
}

// IsAdmin reports whether the caller carries the admin role.
func (r RequestContext) IsAdmin() bool {
	return r.Role == RoleAdmin
}
