package authz

import (
	"context"
	"fmt"
	"log"

	"go.opentelemetry.io/otel/attribute"

	"github.com/BillTheBest/cdap-security-extn/internal/telemetry"
)

// Service implements Authorizer on top of a policy engine Binding.
//
// The service is deliberately thin: it validates principal-type
// preconditions, applies the superuser bypass on enforcement, and forwards
// everything else to the binding unchanged. All privilege storage and
// evaluation belongs to the binding.
type Service struct {
	binding    Binding
	superusers map[string]struct{}
}

// NewService creates the authorizer over the given binding.
//
// superusers is the list of user names that bypass enforcement checks. The
// list must not be empty: a deployment without superusers can lock itself
// out before any privileges are granted.
func NewService(b Binding, superusers []string) (*Service, error) {
	if b == nil {
		return nil, fmt.Errorf("policy binding is required")
	}
	if len(superusers) == 0 {
		return nil, fmt.Errorf("superusers list is required: provide at least one user that bypasses enforcement")
	}

	set := make(map[string]struct{}, len(superusers))
	for _, su := range superusers {
		set[su] = struct{}{}
	}

	return &Service{binding: b, superusers: set}, nil
}

var _ Authorizer = (*Service)(nil)

// Grant adds privileges for actions on an entity to a role.
func (s *Service) Grant(ctx context.Context, entity EntityRef, principal Principal, actions []Action) error {
	ctx, span := telemetry.StartSpan(ctx, "authz", "authz.Grant",
		attribute.String(telemetry.AttrEntity, entity.Path()),
		attribute.String(telemetry.AttrPrincipal, principal.String()),
	)
	defer span.End()

	if err := requireType(principal, PrincipalTypeRole); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return s.binding.Grant(ctx, entity, Role{Name: principal.Name}, actions)
}

// Revoke removes privileges for actions on an entity from a role.
func (s *Service) Revoke(ctx context.Context, entity EntityRef, principal Principal, actions []Action) error {
	ctx, span := telemetry.StartSpan(ctx, "authz", "authz.Revoke",
		attribute.String(telemetry.AttrEntity, entity.Path()),
		attribute.String(telemetry.AttrPrincipal, principal.String()),
	)
	defer span.End()

	if err := requireType(principal, PrincipalTypeRole); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return s.binding.Revoke(ctx, entity, Role{Name: principal.Name}, actions)
}

// RevokeAll removes every privilege on an entity.
func (s *Service) RevokeAll(ctx context.Context, entity EntityRef) error {
	ctx, span := telemetry.StartSpan(ctx, "authz", "authz.RevokeAll",
		attribute.String(telemetry.AttrEntity, entity.Path()),
	)
	defer span.End()

	return s.binding.RevokeAll(ctx, entity)
}

// ListPrivileges returns the privileges held by a principal.
func (s *Service) ListPrivileges(ctx context.Context, principal Principal) ([]Privilege, error) {
	return s.binding.ListPrivileges(ctx, principal)
}

// CreateRole creates a new role.
func (s *Service) CreateRole(ctx context.Context, role Role) error {
	return s.binding.CreateRole(ctx, role)
}

// DropRole deletes a role and all of its privileges.
func (s *Service) DropRole(ctx context.Context, role Role) error {
	return s.binding.DropRole(ctx, role)
}

// AddRoleToPrincipal assigns a role to a group.
func (s *Service) AddRoleToPrincipal(ctx context.Context, role Role, principal Principal) error {
	if err := requireType(principal, PrincipalTypeGroup); err != nil {
		return err
	}
	return s.binding.AddRoleToGroup(ctx, role, principal)
}

// RemoveRoleFromPrincipal removes a role assignment from a group.
func (s *Service) RemoveRoleFromPrincipal(ctx context.Context, role Role, principal Principal) error {
	if err := requireType(principal, PrincipalTypeGroup); err != nil {
		return err
	}
	return s.binding.RemoveRoleFromGroup(ctx, role, principal)
}

// ListRoles returns the roles held by a user or group.
func (s *Service) ListRoles(ctx context.Context, principal Principal) ([]Role, error) {
	if err := requireType(principal, PrincipalTypeUser, PrincipalTypeGroup); err != nil {
		return nil, err
	}
	return s.binding.ListRolesForPrincipal(ctx, principal)
}

// ListAllRoles returns every role in the system.
func (s *Service) ListAllRoles(ctx context.Context) ([]Role, error) {
	return s.binding.ListAllRoles(ctx)
}

// Enforce checks that a user may perform an action on an entity.
//
// Superusers bypass the policy engine entirely: they must be able to repair
// a policy store that denies everyone.
func (s *Service) Enforce(ctx context.Context, entity EntityRef, principal Principal, action Action) error {
	ctx, span := telemetry.StartSpan(ctx, "authz", "authz.Enforce",
		attribute.String(telemetry.AttrEntity, entity.Path()),
		attribute.String(telemetry.AttrPrincipal, principal.String()),
		attribute.String(telemetry.AttrAction, string(action)),
	)
	defer span.End()

	if err := requireType(principal, PrincipalTypeUser); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if _, ok := s.superusers[principal.Name]; ok {
		telemetry.AddEvent(span, "enforce.superuser_bypass")
		log.Printf("enforce: superuser %q bypasses check for %s on %s", principal.Name, action, entity.Path())
		return nil
	}

	allowed, err := s.binding.Authorize(ctx, entity, principal, action)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("authorize %s for %s on %s: %w", action, principal, entity.Path(), err)
	}
	if !allowed {
		telemetry.AddEvent(span, "enforce.denied")
		return &UnauthorizedError{Principal: principal, Action: action, Entity: entity}
	}
	return nil
}

// requireType validates a principal against the allowed types for an
// operation.
func requireType(p Principal, allowed ...PrincipalType) error {
	for _, t := range allowed {
		if p.Type == t {
			return nil
		}
	}
	return &InvalidPrincipalTypeError{Principal: p, Allowed: allowed}
}
