package server

import (
	"context"

	"github.com/BillTheBest/cdap-security-extn/internal/binding"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

// adminService defines the exact policy engine methods used by handlers that
// go beyond the authorizer surface: role metadata, group membership, and
// cache administration.
//
// By defining this contract in the server package, we avoid importing the
// binding implementation while ensuring type safety at compile time.
type adminService interface {
	// Role metadata
	CreateRoleDetailed(ctx context.Context, name, description, scopeExpr string) error
	RoleDetails(ctx context.Context, name string) (*models.Role, error)

	// Group membership
	AddGroupMember(ctx context.Context, group, user string) error
	RemoveGroupMember(ctx context.Context, group, user string) error
	ListGroupMembers(ctx context.Context, group string) ([]string, error)
	GroupsForUser(ctx context.Context, user string) ([]string, error)

	// Cache administration
	RefreshCache(ctx context.Context) error
	CacheSnapshot() binding.GroupRoleSnapshot
}

var _ adminService = (*binding.Binding)(nil)
