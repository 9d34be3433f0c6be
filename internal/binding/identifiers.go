package binding

import (
	"fmt"
	"strings"
)

// Prefix constants for policy store identifiers. Prefixes keep users,
// groups, and roles from colliding in the grouping graph.
const (
	PrefixUser  = "user:"
	PrefixGroup = "group:"
	PrefixRole  = "role:"
)

// UserID creates a policy store user identifier.
// Example: UserID("alice") → "user:alice"
func UserID(name string) string {
	return PrefixUser + name
}

// GroupID creates a policy store group identifier.
// Example: GroupID("analysts") → "group:analysts"
func GroupID(name string) string {
	return PrefixGroup + name
}

// RoleID creates a policy store role identifier qualified by the service
// instance name, so one policy store can serve several installations.
// Example: RoleID("main", "operator") → "role:main/operator"
func RoleID(instance, name string) string {
	return PrefixRole + instance + "/" + name
}

// RoleName extracts the bare role name from an instance-qualified role
// identifier. Returns an error when the identifier belongs to another
// instance or is not a role identifier at all.
func RoleName(instance, id string) (string, error) {
	qualified := PrefixRole + instance + "/"
	if !strings.HasPrefix(id, qualified) {
		return "", fmt.Errorf("identifier %q is not a role of instance %q", id, instance)
	}
	return strings.TrimPrefix(id, qualified), nil
}

// IsRoleID reports whether an identifier names a role of the given instance.
func IsRoleID(instance, id string) bool {
	return strings.HasPrefix(id, PrefixRole+instance+"/")
}
