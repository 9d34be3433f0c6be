package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrRoleNotFound is returned when an operation references a role that
	// does not exist in the policy store.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleExists is returned when creating a role that already exists.
	ErrRoleExists = errors.New("role already exists")
)

// InvalidPrincipalTypeError is returned when an operation is called with a
// principal of the wrong type (e.g. a grant on a user instead of a role).
type InvalidPrincipalTypeError struct {
	Principal Principal
	Allowed   []PrincipalType
}

func (e *InvalidPrincipalTypeError) Error() string {
	return fmt.Sprintf("principal %q has type %q, operation allowed for %v",
		e.Principal.Name, e.Principal.Type, e.Allowed)
}

// UnauthorizedError is returned by Enforce when the policy engine denies the
// requested action.
type UnauthorizedError struct {
	Principal Principal
	Action    Action
	Entity    EntityRef
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("principal %q is not authorized to %s on %s",
		e.Principal.Name, e.Action, e.Entity.Path())
}
