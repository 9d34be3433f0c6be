// Package binding implements the policy engine collaborator behind the
// authorizer. Privileges are stored as Casbin policy rules, role resolution
// runs over Casbin's grouping graph (user→group→role, transitive), and
// authorization is a read-only enforcer query.
package binding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/casbin/casbin/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
	"github.com/BillTheBest/cdap-security-extn/internal/repository"
)

// decisionCacheSize bounds the enforcement decision cache. Entries are tiny;
// the bound only guards against unbounded principal/entity cardinality.
const decisionCacheSize = 4096

// Binding stores privileges and evaluates authorization through a Casbin
// enforcer persisted with bun. Mutations are write-through: database row
// first, engine second, with rollback of the row when the engine write
// fails.
type Binding struct {
	enforcer     casbin.IEnforcer
	roles        repository.RoleRepository
	groupRoles   repository.GroupRoleRepository
	groupMembers repository.GroupMemberRepository

	// roleCache serves the group role-listing read path without queries.
	roleCache *GroupRoleCache

	// decisions caches enforcement results, purged on any policy mutation.
	decisions *lru.Cache[string, bool]

	// instance qualifies role identifiers so one policy store can serve
	// several installations.
	instance string
}

// Dependencies contains all collaborators for Binding construction.
type Dependencies struct {
	Enforcer     casbin.IEnforcer
	Roles        repository.RoleRepository
	GroupRoles   repository.GroupRoleRepository
	GroupMembers repository.GroupMemberRepository
}

// New creates a Binding, loading the group→role cache. Fails if the initial
// cache load fails: role listing would be broken for every request.
func New(deps Dependencies, instance string) (*Binding, error) {
	if deps.Enforcer == nil {
		return nil, fmt.Errorf("enforcer is required")
	}
	if instance == "" {
		return nil, fmt.Errorf("instance name is required")
	}

	cache, err := NewGroupRoleCache(deps.GroupRoles, deps.Roles)
	if err != nil {
		return nil, fmt.Errorf("initialize group role cache: %w", err)
	}

	decisions, err := lru.New[string, bool](decisionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create decision cache: %w", err)
	}

	return &Binding{
		enforcer:     deps.Enforcer,
		roles:        deps.Roles,
		groupRoles:   deps.GroupRoles,
		groupMembers: deps.GroupMembers,
		roleCache:    cache,
		decisions:    decisions,
		instance:     instance,
	}, nil
}

var _ authz.Binding = (*Binding)(nil)

// =========================================================================
// Privileges
// =========================================================================

// Grant adds policy rules granting actions on an entity to a role. The
// role's scope expression, if any, is written into each rule. Granting an
// already-held privilege is a no-op.
func (b *Binding) Grant(ctx context.Context, entity authz.EntityRef, role authz.Role, actions []authz.Action) error {
	record, err := b.getRole(ctx, role.Name)
	if err != nil {
		return err
	}

	roleID := RoleID(b.instance, record.Name)
	for _, action := range actions {
		rule := []string{roleID, entity.Path(), string(action), record.ScopeExpr, "allow"}
		if _, err := b.enforcer.AddPolicy(rule); err != nil {
			return fmt.Errorf("add policy for action %q: %w", action, err)
		}
	}

	b.decisions.Purge()
	return nil
}

// Revoke removes policy rules granting actions on an entity from a role.
func (b *Binding) Revoke(ctx context.Context, entity authz.EntityRef, role authz.Role, actions []authz.Action) error {
	record, err := b.getRole(ctx, role.Name)
	if err != nil {
		return err
	}

	roleID := RoleID(b.instance, record.Name)
	for _, action := range actions {
		// Match on subject, entity, and action; the stored scope and effect
		// columns belong to the rule being removed, whatever they are.
		if _, err := b.enforcer.RemoveFilteredPolicy(0, roleID, entity.Path(), string(action)); err != nil {
			return fmt.Errorf("remove policy for action %q: %w", action, err)
		}
	}

	b.decisions.Purge()
	return nil
}

// RevokeAll removes every privilege on an entity across all roles. Called
// when the entity is deleted.
func (b *Binding) RevokeAll(ctx context.Context, entity authz.EntityRef) error {
	if _, err := b.enforcer.RemoveFilteredPolicy(1, entity.Path()); err != nil {
		return fmt.Errorf("remove policies for entity %s: %w", entity.Path(), err)
	}

	b.decisions.Purge()
	return nil
}

// ListPrivileges returns the privileges held by a principal. For a role the
// result is its own policy rules; for users and groups it is the union over
// every role reachable through the grouping graph.
func (b *Binding) ListPrivileges(ctx context.Context, principal authz.Principal) ([]authz.Privilege, error) {
	var roleIDs []string

	switch principal.Type {
	case authz.PrincipalTypeRole:
		record, err := b.getRole(ctx, principal.Name)
		if err != nil {
			return nil, err
		}
		roleIDs = []string{RoleID(b.instance, record.Name)}

	case authz.PrincipalTypeUser, authz.PrincipalTypeGroup:
		subject := UserID(principal.Name)
		if principal.Type == authz.PrincipalTypeGroup {
			subject = GroupID(principal.Name)
		}
		implicit, err := b.enforcer.GetImplicitRolesForUser(subject)
		if err != nil {
			return nil, fmt.Errorf("resolve roles for %s: %w", principal, err)
		}
		for _, id := range implicit {
			if IsRoleID(b.instance, id) {
				roleIDs = append(roleIDs, id)
			}
		}

	default:
		return nil, fmt.Errorf("unknown principal type %q", principal.Type)
	}

	seen := make(map[string]struct{})
	var privileges []authz.Privilege

	for _, roleID := range roleIDs {
		rules, err := b.enforcer.GetPermissionsForUser(roleID)
		if err != nil {
			return nil, fmt.Errorf("get privileges for %s: %w", roleID, err)
		}
		for _, rule := range rules {
			// Rule layout: [subject, entity path, action, scope, effect].
			if len(rule) < 3 {
				continue
			}
			key := rule[1] + "\x00" + rule[2]
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			entity, err := authz.ParseEntityPath(rule[1])
			if err != nil {
				log.Printf("skipping privilege with malformed entity path %q: %v", rule[1], err)
				continue
			}
			privileges = append(privileges, authz.Privilege{Entity: entity, Action: authz.Action(rule[2])})
		}
	}

	sort.Slice(privileges, func(i, j int) bool {
		if privileges[i].Entity.Path() != privileges[j].Entity.Path() {
			return privileges[i].Entity.Path() < privileges[j].Entity.Path()
		}
		return privileges[i].Action < privileges[j].Action
	})

	return privileges, nil
}

// =========================================================================
// Roles
// =========================================================================

// CreateRole creates a role with no description or scope.
func (b *Binding) CreateRole(ctx context.Context, role authz.Role) error {
	return b.CreateRoleDetailed(ctx, role.Name, "", "")
}

// CreateRoleDetailed creates a role with metadata. The scope expression is
// validated as go-bexpr syntax and applied to every later grant of the role.
func (b *Binding) CreateRoleDetailed(ctx context.Context, name, description, scopeExpr string) error {
	if name == "" {
		return fmt.Errorf("role name is required")
	}
	if err := ValidateScope(scopeExpr); err != nil {
		return err
	}

	if _, err := b.roles.GetByName(ctx, name); err == nil {
		return fmt.Errorf("role %q: %w", name, authz.ErrRoleExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check role %q: %w", name, err)
	}

	record := &models.Role{
		Name:        name,
		Description: description,
		ScopeExpr:   scopeExpr,
	}
	if err := b.roles.Create(ctx, record); err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("role %q: %w", name, authz.ErrRoleExists)
		}
		return fmt.Errorf("create role %q: %w", name, err)
	}

	return nil
}

// DropRole deletes a role, its privileges, and its group assignments.
func (b *Binding) DropRole(ctx context.Context, role authz.Role) error {
	record, err := b.getRole(ctx, role.Name)
	if err != nil {
		return err
	}

	if err := b.groupRoles.DeleteByRoleID(ctx, record.ID); err != nil {
		return fmt.Errorf("drop role %q: %w", role.Name, err)
	}
	if err := b.roles.Delete(ctx, record.ID); err != nil {
		return fmt.Errorf("drop role %q: %w", role.Name, err)
	}

	// DeleteRole removes both the role's policy rules and any grouping
	// edges pointing at it.
	roleID := RoleID(b.instance, record.Name)
	if _, err := b.enforcer.DeleteRole(roleID); err != nil {
		return fmt.Errorf("remove engine state for role %q: %w", role.Name, err)
	}

	if err := b.roleCache.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh group role cache: %w", err)
	}
	b.decisions.Purge()
	return nil
}

// RoleDetails returns the stored metadata for a role.
func (b *Binding) RoleDetails(ctx context.Context, name string) (*models.Role, error) {
	return b.getRole(ctx, name)
}

// ListAllRoles returns every role in the system.
func (b *Binding) ListAllRoles(ctx context.Context) ([]authz.Role, error) {
	records, err := b.roles.List(ctx)
	if err != nil {
		return nil, err
	}

	roles := make([]authz.Role, 0, len(records))
	for _, r := range records {
		roles = append(roles, authz.Role{Name: r.Name})
	}
	return roles, nil
}

// =========================================================================
// Role assignment
// =========================================================================

// AddRoleToGroup assigns a role to a group: database row first, grouping
// edge second, row rolled back if the edge write fails.
func (b *Binding) AddRoleToGroup(ctx context.Context, role authz.Role, group authz.Principal) error {
	record, err := b.getRole(ctx, role.Name)
	if err != nil {
		return err
	}

	assignment := &models.GroupRole{
		GroupName: group.Name,
		RoleID:    record.ID,
	}
	if err := b.groupRoles.Create(ctx, assignment); err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("role %q already assigned to group %q", role.Name, group.Name)
		}
		return fmt.Errorf("create group role assignment: %w", err)
	}

	roleID := RoleID(b.instance, record.Name)
	if _, err := b.enforcer.AddRoleForUser(GroupID(group.Name), roleID); err != nil {
		_ = b.groupRoles.Delete(ctx, assignment.ID)
		return fmt.Errorf("add grouping edge: %w", err)
	}

	if err := b.roleCache.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh group role cache: %w", err)
	}
	b.decisions.Purge()
	return nil
}

// RemoveRoleFromGroup removes a role assignment from a group.
func (b *Binding) RemoveRoleFromGroup(ctx context.Context, role authz.Role, group authz.Principal) error {
	record, err := b.getRole(ctx, role.Name)
	if err != nil {
		return err
	}

	if err := b.groupRoles.DeleteByGroupAndRole(ctx, group.Name, record.ID); err != nil {
		return fmt.Errorf("delete group role assignment: %w", err)
	}

	roleID := RoleID(b.instance, record.Name)
	if _, err := b.enforcer.DeleteRoleForUser(GroupID(group.Name), roleID); err != nil {
		return fmt.Errorf("remove grouping edge: %w", err)
	}

	if err := b.roleCache.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh group role cache: %w", err)
	}
	b.decisions.Purge()
	return nil
}

// ListRolesForPrincipal returns the roles held by a user or group. Group
// lookups come from the immutable snapshot cache; user lookups walk the
// grouping graph so membership-derived roles are included.
func (b *Binding) ListRolesForPrincipal(ctx context.Context, principal authz.Principal) ([]authz.Role, error) {
	switch principal.Type {
	case authz.PrincipalTypeGroup:
		names := b.roleCache.RolesForGroup(principal.Name)
		sort.Strings(names)
		roles := make([]authz.Role, 0, len(names))
		for _, name := range names {
			roles = append(roles, authz.Role{Name: name})
		}
		return roles, nil

	case authz.PrincipalTypeUser:
		implicit, err := b.enforcer.GetImplicitRolesForUser(UserID(principal.Name))
		if err != nil {
			return nil, fmt.Errorf("resolve roles for %s: %w", principal, err)
		}

		seen := make(map[string]struct{})
		var roles []authz.Role
		for _, id := range implicit {
			name, err := RoleName(b.instance, id)
			if err != nil {
				continue // grouping edge to a group or another instance
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			roles = append(roles, authz.Role{Name: name})
		}
		sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
		return roles, nil

	default:
		return nil, fmt.Errorf("cannot list roles for principal type %q", principal.Type)
	}
}

// =========================================================================
// Group membership
// =========================================================================

// AddGroupMember adds a user to a group. Membership is a grouping edge
// user→group, so the user transitively picks up the group's roles.
func (b *Binding) AddGroupMember(ctx context.Context, group, user string) error {
	member := &models.GroupMember{
		GroupName: group,
		UserName:  user,
	}
	if err := b.groupMembers.Create(ctx, member); err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("user %q already in group %q", user, group)
		}
		return fmt.Errorf("create group membership: %w", err)
	}

	if _, err := b.enforcer.AddRoleForUser(UserID(user), GroupID(group)); err != nil {
		_ = b.groupMembers.DeleteByGroupAndUser(ctx, group, user)
		return fmt.Errorf("add membership edge: %w", err)
	}

	b.decisions.Purge()
	return nil
}

// RemoveGroupMember removes a user from a group.
func (b *Binding) RemoveGroupMember(ctx context.Context, group, user string) error {
	if err := b.groupMembers.DeleteByGroupAndUser(ctx, group, user); err != nil {
		return err
	}

	if _, err := b.enforcer.DeleteRoleForUser(UserID(user), GroupID(group)); err != nil {
		return fmt.Errorf("remove membership edge: %w", err)
	}

	b.decisions.Purge()
	return nil
}

// ListGroupMembers returns the user names in a group.
func (b *Binding) ListGroupMembers(ctx context.Context, group string) ([]string, error) {
	members, err := b.groupMembers.ListByGroup(ctx, group)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.UserName)
	}
	return names, nil
}

// GroupsForUser returns the groups a user belongs to.
func (b *Binding) GroupsForUser(ctx context.Context, user string) ([]string, error) {
	return b.groupMembers.ListGroupsForUser(ctx, user)
}

// =========================================================================
// Authorization
// =========================================================================

// Authorize checks whether a user may perform an action on an entity. The
// check is read-only: the enforcer resolves the user's roles through the
// grouping graph and matches policy rules against the entity path, action,
// and entity attributes. Results are cached until the next policy mutation.
func (b *Binding) Authorize(ctx context.Context, entity authz.EntityRef, principal authz.Principal, action authz.Action) (bool, error) {
	key := principal.Name + "\x00" + entity.Path() + "\x00" + string(action)
	if allowed, ok := b.decisions.Get(key); ok {
		return allowed, nil
	}

	allowed, err := b.enforcer.Enforce(UserID(principal.Name), entity.Path(), string(action), entity.Attributes())
	if err != nil {
		return false, fmt.Errorf("enforce: %w", err)
	}

	if allowed {
		log.Printf("authorization granted: user=%s act=%s entity=%s", principal.Name, action, entity.Path())
	} else {
		log.Printf("authorization denied: user=%s act=%s entity=%s", principal.Name, action, entity.Path())
	}

	b.decisions.Add(key, allowed)
	return allowed, nil
}

// RefreshCache reloads the group→role snapshot from the database. Exposed
// for the admin API and background refresh.
func (b *Binding) RefreshCache(ctx context.Context) error {
	return b.roleCache.Refresh(ctx)
}

// CacheSnapshot returns the current group→role snapshot for debugging.
func (b *Binding) CacheSnapshot() GroupRoleSnapshot {
	snapshot := b.roleCache.Get()
	if snapshot == nil {
		return GroupRoleSnapshot{Mappings: make(map[string][]string)}
	}
	return *snapshot
}

// =========================================================================
// Helpers
// =========================================================================

// getRole fetches role metadata, translating missing rows into the typed
// SPI error.
func (b *Binding) getRole(ctx context.Context, name string) (*models.Role, error) {
	record, err := b.roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("role %q: %w", name, authz.ErrRoleNotFound)
		}
		return nil, fmt.Errorf("get role %q: %w", name, err)
	}
	return record, nil
}

// isDuplicateErr detects unique constraint violations on both supported
// databases.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") || // PostgreSQL
		strings.Contains(msg, "UNIQUE constraint failed") // SQLite
}
