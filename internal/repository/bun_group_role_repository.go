package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/db/bunx"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

// BunGroupRoleRepository implements GroupRoleRepository using bun.
type BunGroupRoleRepository struct {
	db *bun.DB
}

// NewBunGroupRoleRepository creates a new bun-based group-role repository.
func NewBunGroupRoleRepository(db *bun.DB) GroupRoleRepository {
	return &BunGroupRoleRepository{db: db}
}

// Create inserts a new group→role assignment.
func (r *BunGroupRoleRepository) Create(ctx context.Context, assignment *models.GroupRole) error {
	if assignment.ID == "" {
		assignment.ID = bunx.NewUUIDv7()
	}

	if _, err := r.db.NewInsert().Model(assignment).Exec(ctx); err != nil {
		return fmt.Errorf("create group role assignment: %w", err)
	}
	return nil
}

// Delete deletes an assignment by ID.
func (r *BunGroupRoleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.NewDelete().Model((*models.GroupRole)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("delete group role assignment: %w", err)
	}
	return nil
}

// DeleteByGroupAndRole deletes the assignment of a role to a group.
func (r *BunGroupRoleRepository) DeleteByGroupAndRole(ctx context.Context, groupName, roleID string) error {
	result, err := r.db.NewDelete().
		Model((*models.GroupRole)(nil)).
		Where("group_name = ?", groupName).
		Where("role_id = ?", roleID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete group role assignment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("assignment of role %s to group %q: %w", roleID, groupName, ErrNotFound)
	}
	return nil
}

// DeleteByRoleID deletes all assignments of a role. Used when the role is
// dropped.
func (r *BunGroupRoleRepository) DeleteByRoleID(ctx context.Context, roleID string) error {
	if _, err := r.db.NewDelete().Model((*models.GroupRole)(nil)).Where("role_id = ?", roleID).Exec(ctx); err != nil {
		return fmt.Errorf("delete assignments for role %s: %w", roleID, err)
	}
	return nil
}

// GetByGroupName returns all assignments for a group.
func (r *BunGroupRoleRepository) GetByGroupName(ctx context.Context, groupName string) ([]models.GroupRole, error) {
	var assignments []models.GroupRole
	err := r.db.NewSelect().Model(&assignments).Where("group_name = ?", groupName).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get group role assignments: %w", err)
	}
	return assignments, nil
}

// List returns all group→role assignments.
func (r *BunGroupRoleRepository) List(ctx context.Context) ([]models.GroupRole, error) {
	var assignments []models.GroupRole
	if err := r.db.NewSelect().Model(&assignments).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list group role assignments: %w", err)
	}
	return assignments, nil
}
