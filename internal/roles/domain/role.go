// Package domain defines role labels and per-principal role assignments.
package domain

// Role is a role label grantable to a principal.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// ValidRoles returns the set of grantable role labels.
func ValidRoles() []Role {
	return []Role{RoleConsumer, RoleSeller, RoleAdmin}
}

// IsValidRole reports whether role is a grantable role label.
func IsValidRole(role Role) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// Assignment is the set of roles granted to a principal. Set semantics: no
// duplicates, order irrelevant. The zero value is the empty assignment.
type Assignment map[Role]struct{}

// NewAssignment returns an Assignment containing the given roles.
func NewAssignment(roles ...Role) Assignment {
	a := make(Assignment, len(roles))
	for _, r := range roles {
		a[r] = struct{}{}
	}
	return a
}

// Has reports whether role is a member of the assignment.
func (a Assignment) Has(role Role) bool {
	_, ok := a[role]
	return ok
}

// Roles returns the assignment's members. Order is unspecified.
func (a Assignment) Roles() []Role {
	out := make([]Role, 0, len(a))
	for r := range a {
		out = append(out, r)
	}
	return out
}
