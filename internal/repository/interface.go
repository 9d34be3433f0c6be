package repository

import (
	"context"
	"errors"

	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// RoleRepository exposes persistence operations for role metadata.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Role, error)
}

// GroupRoleRepository exposes persistence operations for group→role
// assignments.
type GroupRoleRepository interface {
	Create(ctx context.Context, assignment *models.GroupRole) error
	Delete(ctx context.Context, id string) error
	DeleteByGroupAndRole(ctx context.Context, groupName, roleID string) error
	DeleteByRoleID(ctx context.Context, roleID string) error
	GetByGroupName(ctx context.Context, groupName string) ([]models.GroupRole, error)
	List(ctx context.Context) ([]models.GroupRole, error)
}

// GroupMemberRepository exposes persistence operations for group
// membership.
type GroupMemberRepository interface {
	Create(ctx context.Context, member *models.GroupMember) error
	DeleteByGroupAndUser(ctx context.Context, groupName, userName string) error
	ListByGroup(ctx context.Context, groupName string) ([]models.GroupMember, error)
	ListGroupsForUser(ctx context.Context, userName string) ([]string, error)
}
