// Package policy defines the role hierarchy and the requirements commands
// declare against it.
package policy

import (
	"fmt"
	"strings"
)

// Role is a caller's privilege level. Higher values carry more privilege.
type Role int

const (
	Guest Role = iota
	User
	Moderator
	Admin
)

var roleNames = map[Role]string{
	Guest:     "GUEST",
	User:      "USER",
	Moderator: "MODERATOR",
	Admin:     "ADMIN",
}

// String returns the upper-case role name
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Valid returns true for the four known roles
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole parses a role name case-insensitively. "MODER" is accepted as
// an alias for MODERATOR.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GUEST":
		return Guest, nil
	case "USER":
		return User, nil
	case "MODERATOR", "MODER":
		return Moderator, nil
	case "ADMIN":
		return Admin, nil
	default:
		return Guest, fmt.Errorf("unknown role %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so roles can be read
// from YAML and environment variables by name
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
