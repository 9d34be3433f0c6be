package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role holds role metadata alongside the policy rules the engine stores for
// it. The policy store is the source of truth for privileges; this row
// carries the name, description, and scope used when writing rules.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID          string    `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull,unique"`
	Description string    `bun:"description"`
	ScopeExpr   string    `bun:"scope_expr"` // go-bexpr expression applied to grants of this role
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
	Version     int       `bun:"version,notnull,default:1"`
}

// GroupRole maps a directory group to a role.
type GroupRole struct {
	bun.BaseModel `bun:"table:group_roles,alias:gr"`

	ID         string    `bun:"id,pk,type:uuid"`
	GroupName  string    `bun:"group_name,notnull"`
	RoleID     string    `bun:"role_id,notnull,type:uuid"` // FK to roles(id)
	AssignedAt time.Time `bun:"assigned_at,notnull,default:current_timestamp"`
}

// GroupMember maps a user to a directory group. Membership feeds the
// grouping graph so users inherit roles assigned to their groups.
type GroupMember struct {
	bun.BaseModel `bun:"table:group_members,alias:gm"`

	ID        string    `bun:"id,pk,type:uuid"`
	GroupName string    `bun:"group_name,notnull"`
	UserName  string    `bun:"user_name,notnull"`
	AddedAt   time.Time `bun:"added_at,notnull,default:current_timestamp"`
}
