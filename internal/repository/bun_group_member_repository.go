package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/db/bunx"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

// BunGroupMemberRepository implements GroupMemberRepository using bun.
type BunGroupMemberRepository struct {
	db *bun.DB
}

// NewBunGroupMemberRepository creates a new bun-based group membership
// repository.
func NewBunGroupMemberRepository(db *bun.DB) GroupMemberRepository {
	return &BunGroupMemberRepository{db: db}
}

// Create inserts a new group membership.
func (r *BunGroupMemberRepository) Create(ctx context.Context, member *models.GroupMember) error {
	if member.ID == "" {
		member.ID = bunx.NewUUIDv7()
	}

	if _, err := r.db.NewInsert().Model(member).Exec(ctx); err != nil {
		return fmt.Errorf("create group membership: %w", err)
	}
	return nil
}

// DeleteByGroupAndUser removes a user from a group.
func (r *BunGroupMemberRepository) DeleteByGroupAndUser(ctx context.Context, groupName, userName string) error {
	result, err := r.db.NewDelete().
		Model((*models.GroupMember)(nil)).
		Where("group_name = ?", groupName).
		Where("user_name = ?", userName).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete group membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("membership of %q in group %q: %w", userName, groupName, ErrNotFound)
	}
	return nil
}

// ListByGroup returns the members of a group.
func (r *BunGroupMemberRepository) ListByGroup(ctx context.Context, groupName string) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.NewSelect().Model(&members).Where("group_name = ?", groupName).Order("user_name ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}

// ListGroupsForUser returns the names of the groups a user belongs to.
func (r *BunGroupMemberRepository) ListGroupsForUser(ctx context.Context, userName string) ([]string, error) {
	var groups []string
	err := r.db.NewSelect().
		Model((*models.GroupMember)(nil)).
		Column("group_name").
		Where("user_name = ?", userName).
		Order("group_name ASC").
		Scan(ctx, &groups)
	if err != nil {
		return nil, fmt.Errorf("list groups for user: %w", err)
	}
	return groups, nil
}
