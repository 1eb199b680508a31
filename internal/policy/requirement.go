package policy

import "strings"

// Requirement is the privilege a command declares at registration time.
// It is either a minimum threshold or an explicit allow-set.
type Requirement struct {
	min      Role
	allow    []Role
	declared bool
}

// Anyone is satisfied by every role
var Anyone = AtLeast(Guest)

// AtLeast requires the caller's role to be min or higher
func AtLeast(min Role) Requirement {
	return Requirement{min: min, declared: true}
}

// AnyOf requires the caller's role to be exactly one of roles
func AnyOf(roles ...Role) Requirement {
	allow := make([]Role, len(roles))
	copy(allow, roles)
	return Requirement{allow: allow, declared: true}
}

// Declared returns false for the zero Requirement, which no constructor
// produces
func (r Requirement) Declared() bool {
	return r.declared
}

// IsSet returns true for allow-set requirements
func (r Requirement) IsSet() bool {
	return r.allow != nil
}

// String renders the requirement for help output and logs
func (r Requirement) String() string {
	if !r.IsSet() {
		if r.min == Guest {
			return "anyone"
		}
		return r.min.String() + "+"
	}
	names := make([]string, len(r.allow))
	for i, role := range r.allow {
		names[i] = role.String()
	}
	return strings.Join(names, "|")
}

// Satisfies reports whether role meets requirement. It has no side effects.
func Satisfies(role Role, requirement Requirement) bool {
	if !role.Valid() {
		return false
	}
	if !requirement.IsSet() {
		return role >= requirement.min
	}
	for _, allowed := range requirement.allow {
		if role == allowed {
			return true
		}
	}
	return false
}
