package authz

import "context"

// Authorizer is the privilege management surface exposed to the host
// application. Implementations validate principal preconditions and delegate
// every decision to a policy engine binding: no privilege storage, role
// resolution, or policy evaluation happens at this layer.
type Authorizer interface {
	// Grant adds privileges for actions on an entity to a role. The
	// principal must be of type role.
	Grant(ctx context.Context, entity EntityRef, principal Principal, actions []Action) error

	// Revoke removes privileges for actions on an entity from a role. The
	// principal must be of type role.
	Revoke(ctx context.Context, entity EntityRef, principal Principal, actions []Action) error

	// RevokeAll removes every privilege on an entity, for all roles. Called
	// when the entity itself is deleted.
	RevokeAll(ctx context.Context, entity EntityRef) error

	// ListPrivileges returns the privileges held by a principal. For users
	// and groups this is the union over their resolved roles.
	ListPrivileges(ctx context.Context, principal Principal) ([]Privilege, error)

	// CreateRole creates a new role. Returns ErrRoleExists if the role is
	// already present.
	CreateRole(ctx context.Context, role Role) error

	// DropRole deletes a role and all of its privileges. Returns
	// ErrRoleNotFound if the role does not exist.
	DropRole(ctx context.Context, role Role) error

	// AddRoleToPrincipal assigns a role to a group. Roles are only assigned
	// to groups; users inherit them through membership.
	AddRoleToPrincipal(ctx context.Context, role Role, principal Principal) error

	// RemoveRoleFromPrincipal removes a role assignment from a group.
	RemoveRoleFromPrincipal(ctx context.Context, role Role, principal Principal) error

	// ListRoles returns the roles held by a user or group. The principal
	// must not be of type role.
	ListRoles(ctx context.Context, principal Principal) ([]Role, error)

	// ListAllRoles returns every role in the system.
	ListAllRoles(ctx context.Context) ([]Role, error)

	// Enforce checks that a user may perform an action on an entity.
	// Returns an *UnauthorizedError when the policy engine denies the
	// request. The principal must be of type user.
	Enforce(ctx context.Context, entity EntityRef, principal Principal, action Action) error
}

// Binding is the policy engine collaborator behind the Authorizer. It owns
// privilege storage, group/role resolution, and authorization evaluation.
type Binding interface {
	Grant(ctx context.Context, entity EntityRef, role Role, actions []Action) error
	Revoke(ctx context.Context, entity EntityRef, role Role, actions []Action) error
	RevokeAll(ctx context.Context, entity EntityRef) error
	ListPrivileges(ctx context.Context, principal Principal) ([]Privilege, error)

	CreateRole(ctx context.Context, role Role) error
	DropRole(ctx context.Context, role Role) error
	AddRoleToGroup(ctx context.Context, role Role, group Principal) error
	RemoveRoleFromGroup(ctx context.Context, role Role, group Principal) error
	ListRolesForPrincipal(ctx context.Context, principal Principal) ([]Role, error)
	ListAllRoles(ctx context.Context) ([]Role, error)

	Authorize(ctx context.Context, entity EntityRef, principal Principal, action Action) (bool, error)
}
