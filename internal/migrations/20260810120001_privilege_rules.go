package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/binding/bunadapter"
)

func init() {
	Migrations.MustRegister(up_20260810120001, down_20260810120001)
}

// up_20260810120001 creates the privilege_rules table the Casbin adapter
// persists policy and grouping rules into.
func up_20260810120001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating privilege_rules table...")
	_, err := db.NewCreateTable().
		Model((*bunadapter.PrivilegeRule)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create privilege_rules table: %w", err)
	}

	// Enforcement filters on rule type plus the first two columns
	// (subject, entity path).
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_privilege_rules_ptype_v0_v1
		ON privilege_rules (ptype, v0, v1)
	`)
	if err != nil {
		return fmt.Errorf("create privilege_rules index: %w", err)
	}

	// Entity hierarchy checks prefix-scan the entity path column.
	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_privilege_rules_v1_pattern
			ON privilege_rules (v1 varchar_pattern_ops)
		`)
		if err != nil {
			return fmt.Errorf("create privilege_rules pattern index: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260810120001 drops the privilege_rules table.
func down_20260810120001(ctx context.Context, db *bun.DB) error {
	if _, err := db.Exec("DROP TABLE IF EXISTS privilege_rules"); err != nil {
		return fmt.Errorf("drop privilege_rules table: %w", err)
	}
	return nil
}
