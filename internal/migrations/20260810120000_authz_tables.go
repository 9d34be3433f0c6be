package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260810120000, down_20260810120000)
}

// up_20260810120000 creates the role metadata, group assignment, and group
// membership tables.
func up_20260810120000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating roles table...")
	_, err := db.NewCreateTable().
		Model((*models.Role)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create roles table: %w", err)
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_roles_name ON roles(name)`)
	if err != nil {
		return fmt.Errorf("create roles name index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating group_roles table...")
	_, err = db.NewCreateTable().
		Model((*models.GroupRole)(nil)).
		IfNotExists().
		ForeignKey(`("role_id") REFERENCES "roles" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create group_roles table: %w", err)
	}

	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_group_roles_group_role
		ON group_roles (group_name, role_id)
	`)
	if err != nil {
		return fmt.Errorf("create group_roles unique index: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating group_members table...")
	_, err = db.NewCreateTable().
		Model((*models.GroupMember)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create group_members table: %w", err)
	}

	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_group_members_group_user
		ON group_members (group_name, user_name)
	`)
	if err != nil {
		return fmt.Errorf("create group_members unique index: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_group_members_user
		ON group_members (user_name)
	`)
	if err != nil {
		return fmt.Errorf("create group_members user index: %w", err)
	}
	fmt.Println(" OK")

	return nil
}

// down_20260810120000 drops the authorization tables.
func down_20260810120000(ctx context.Context, db *bun.DB) error {
	for _, table := range []string{"group_members", "group_roles", "roles"} {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("drop %s table: %w", table, err)
		}
	}
	return nil
}
