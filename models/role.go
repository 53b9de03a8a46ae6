// File: pharmalink/models/role.go
package models

import "fmt"

// Role identifies the kind of authenticated principal. It replaces the
// stringly-typed userType tag with a checked enum.
type Role int

const (
	RoleAdmin Role = iota
	RoleDoctor
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDoctor:
		return "doctor"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a wire-format role string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "doctor":
		return RoleDoctor, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}
