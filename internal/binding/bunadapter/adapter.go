package bunadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2/model"
	"github.com/uptrace/bun"
)

// Adapter persists Casbin policy rules through an existing *bun.DB
// connection, so policy storage shares the pool and dialect handling with
// the rest of the service. Derived from msales/casbin-bun-adapter, reduced
// to the codepaths this service exercises and without the hard-coded
// Postgres schema qualifier (the table name must work on SQLite too).
type Adapter struct {
	db *bun.DB
}

// NewAdapter creates an adapter over an existing bun connection. The
// privilege_rules table must already exist (created by migrations).
func NewAdapter(db *bun.DB) (*Adapter, error) {
	if db == nil {
		return nil, fmt.Errorf("bun adapter requires a database connection")
	}
	return &Adapter{db: db}, nil
}

// LoadPolicy loads all policy rules from the database into the model.
func (a *Adapter) LoadPolicy(m model.Model) error {
	var rules []*PrivilegeRule

	if err := a.db.NewSelect().Model(&rules).Scan(context.Background()); err != nil {
		return fmt.Errorf("load policy rules: %w", err)
	}

	for _, r := range rules {
		values, last := r.values()
		if last == -1 {
			continue // skip empty rule
		}
		_ = m.AddPolicy(r.Ptype, r.Ptype, values[:last+1])
	}

	return nil
}

// SavePolicy replaces all stored rules with the model's current policy.
func (a *Adapter) SavePolicy(m model.Model) error {
	var rules []*PrivilegeRule
	for _, section := range []string{"p", "g"} {
		for ptype, assertion := range m[section] {
			for _, rule := range assertion.Policy {
				rules = append(rules, newPrivilegeRule(ptype, rule))
			}
		}
	}

	if err := a.save(true, rules...); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	return nil
}

// AddPolicy adds a single policy rule to the database.
func (a *Adapter) AddPolicy(_ string, ptype string, rule []string) error {
	if err := a.save(false, newPrivilegeRule(ptype, rule)); err != nil {
		return fmt.Errorf("add policy rule: %w", err)
	}
	return nil
}

// AddPolicies adds multiple policy rules in one transaction.
func (a *Adapter) AddPolicies(_ string, ptype string, rules [][]string) error {
	lines := make([]*PrivilegeRule, 0, len(rules))
	for _, rule := range rules {
		lines = append(lines, newPrivilegeRule(ptype, rule))
	}

	if err := a.save(false, lines...); err != nil {
		return fmt.Errorf("add policy rules: %w", err)
	}
	return nil
}

// RemovePolicy removes a single policy rule from the database.
func (a *Adapter) RemovePolicy(_ string, ptype string, rule []string) error {
	if err := a.delete(newPrivilegeRule(ptype, rule)); err != nil {
		return fmt.Errorf("remove policy rule: %w", err)
	}
	return nil
}

// RemovePolicies removes multiple policy rules from the database.
func (a *Adapter) RemovePolicies(_ string, ptype string, rules [][]string) error {
	lines := make([]*PrivilegeRule, 0, len(rules))
	for _, rule := range rules {
		lines = append(lines, newPrivilegeRule(ptype, rule))
	}

	if err := a.delete(lines...); err != nil {
		return fmt.Errorf("remove policy rules: %w", err)
	}
	return nil
}

// RemoveFilteredPolicy removes rules matching the given field values,
// starting at fieldIndex. Empty values match any column.
func (a *Adapter) RemoveFilteredPolicy(_ string, ptype string, fieldIndex int, fieldValues ...string) error {
	query := a.db.NewDelete().Model((*PrivilegeRule)(nil)).Where("ptype = ?", ptype)

	columns := []string{"v0", "v1", "v2", "v3", "v4", "v5"}
	for i, value := range fieldValues {
		col := fieldIndex + i
		if col >= len(columns) {
			return fmt.Errorf("filter exceeds %d rule columns", len(columns))
		}
		if value != "" {
			query = query.Where(columns[col]+" = ?", value)
		}
	}

	if _, err := query.Exec(context.Background()); err != nil {
		return fmt.Errorf("remove filtered policy: %w", err)
	}
	return nil
}

func (a *Adapter) save(truncate bool, lines ...*PrivilegeRule) error {
	return a.db.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if truncate {
			if _, err := tx.NewTruncateTable().Model((*PrivilegeRule)(nil)).Exec(ctx); err != nil {
				return err
			}
		}

		for _, line := range lines {
			if _, err := tx.NewInsert().Model(line).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *Adapter) delete(lines ...*PrivilegeRule) error {
	if len(lines) == 0 {
		return nil
	}

	query := a.db.NewDelete().Model((*PrivilegeRule)(nil))
	query.QueryBuilder().WhereGroup("AND", func(q bun.QueryBuilder) bun.QueryBuilder {
		return q.WhereGroup("OR", func(q bun.QueryBuilder) bun.QueryBuilder {
			for _, line := range lines {
				line.whereGroup(q)
			}
			return q
		})
	})

	if _, err := query.Exec(context.Background()); err != nil {
		return fmt.Errorf("delete policy rules: %w", err)
	}
	return nil
}

// PrivilegeRule is a stored Casbin rule. A composite primary key over all
// columns makes inserts idempotent without a surrogate ID.
type PrivilegeRule struct {
	bun.BaseModel `bun:"table:privilege_rules,alias:pr"`

	Ptype string `bun:",pk,type:varchar(100),notnull"` // 'p' (privilege) or 'g' (grouping)
	V0    string `bun:",pk,type:varchar(255)"`         // role id (p) or member id (g)
	V1    string `bun:",pk,type:varchar(255)"`         // entity path (p) or role/group id (g)
	V2    string `bun:",pk,type:varchar(255)"`         // action
	V3    string `bun:",pk,type:varchar(255)"`         // scope expression (go-bexpr)
	V4    string `bun:",pk,type:varchar(255)"`         // effect (allow/deny)
	V5    string `bun:",pk,type:varchar(255)"`         // reserved
}

func newPrivilegeRule(ptype string, rule []string) *PrivilegeRule {
	line := &PrivilegeRule{Ptype: ptype}

	fields := []*string{&line.V0, &line.V1, &line.V2, &line.V3, &line.V4, &line.V5}
	for i, v := range rule {
		if i >= len(fields) {
			break
		}
		*fields[i] = v
	}
	return line
}

// values returns the rule columns and the index of the last non-empty one.
// Preserves empty fields in the middle of a rule.
func (r *PrivilegeRule) values() ([]string, int) {
	values := []string{r.V0, r.V1, r.V2, r.V3, r.V4, r.V5}
	last := -1
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != "" {
			last = i
			break
		}
	}
	return values, last
}

// whereGroup extends the query builder with an OR group matching all
// non-empty fields of this rule.
func (r *PrivilegeRule) whereGroup(q bun.QueryBuilder) bun.QueryBuilder {
	q.WhereGroup("OR", func(q bun.QueryBuilder) bun.QueryBuilder {
		q = q.Where("ptype = ?", r.Ptype)
		values, last := r.values()
		columns := []string{"v0", "v1", "v2", "v3", "v4", "v5"}
		for i := 0; i <= last; i++ {
			if values[i] != "" {
				q = q.Where(columns[i]+" = ?", values[i])
			}
		}
		return q
	})
	return q
}

// String renders the rule in Casbin's CSV line format.
func (r *PrivilegeRule) String() string {
	var sb strings.Builder
	sb.WriteString(r.Ptype)

	values, last := r.values()
	for i := 0; i <= last; i++ {
		sb.WriteString(", ")
		sb.WriteString(values[i])
	}
	return sb.String()
}
