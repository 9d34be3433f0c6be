package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/db/bunx"
	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

// BunRoleRepository implements RoleRepository using bun.
type BunRoleRepository struct {
	db *bun.DB
}

// NewBunRoleRepository creates a new bun-based role repository.
func NewBunRoleRepository(db *bun.DB) RoleRepository {
	return &BunRoleRepository{db: db}
}

// Create inserts a new role.
func (r *BunRoleRepository) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = bunx.NewUUIDv7()
	}
	if role.Version == 0 {
		role.Version = 1
	}

	if _, err := r.db.NewInsert().Model(role).Exec(ctx); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// GetByID retrieves a role by ID.
func (r *BunRoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	role := new(models.Role)
	err := r.db.NewSelect().Model(role).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// GetByName retrieves a role by name.
func (r *BunRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	role := new(models.Role)
	err := r.db.NewSelect().Model(role).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get role by name: %w", err)
	}
	return role, nil
}

// Update updates an existing role and bumps its version.
func (r *BunRoleRepository) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now()
	role.Version++

	result, err := r.db.NewUpdate().Model(role).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("role %s: %w", role.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a role by ID.
func (r *BunRoleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().Model((*models.Role)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("role %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns all roles ordered by name.
func (r *BunRoleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.NewSelect().Model(&roles).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}
