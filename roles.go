package identity

import "strings"

// Role is a tag on an account used to gate access to operations
type Role = string

const (
	// RoleUser is the base role every registered account gets
	RoleUser Role = "user"
	// RoleAdmin can list and manage other accounts
	RoleAdmin Role = "admin"
)

// Roles is the set of roles held by an account
type Roles []Role

// DefaultRoles returns the role set assigned at creation
func DefaultRoles() Roles {
	return Roles{RoleUser}
}

// Has checks if the set contains role
func (r Roles) Has(role Role) bool {
	for _, candidate := range r {
		if candidate == role {
			return true
		}
	}
	return false
}

// Intersects reports whether any of required is in the set.
// An empty required set always passes.
func (r Roles) Intersects(required Roles) bool {
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// Normalize trims, lowercases and dedupes roles, dropping empty entries.
// The result is never empty: it falls back to DefaultRoles.
func (r Roles) Normalize() Roles {
	out := make(Roles, 0, len(r))
	for _, role := range r {
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" || out.Has(role) {
			continue
		}
		out = append(out, role)
	}
	if len(out) == 0 {
		return DefaultRoles()
	}
	return out
}

// IsValidRole checks if the role is one of the predefined roles
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() Roles {
	return Roles{RoleUser, RoleAdmin}
}
