package cmdutil

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/binding"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
	"github.com/BillTheBest/cdap-security-extn/internal/db/bunx"
	"github.com/BillTheBest/cdap-security-extn/internal/repository"
)

// AuthorizerBundle bundles the authorizer and its policy binding with the
// underlying DB connection so callers can reuse the connection when
// necessary.
type AuthorizerBundle struct {
	Authorizer *authz.Service
	Binding    *binding.Binding
	DB         *bun.DB
}

// Close releases the underlying database connection.
func (b *AuthorizerBundle) Close() {
	if b == nil || b.DB == nil {
		return
	}
	bunx.Close(b.DB)
}

// NewAuthorizerBundle centralizes authorizer construction for CLI commands
// and the server. It connects the database, initializes the policy enforcer,
// wires repositories into the binding, and layers the authorizer on top.
func NewAuthorizerBundle(cfg *config.Config) (*AuthorizerBundle, error) {
	db, err := bunx.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	enforcer, err := binding.InitEnforcer(db)
	if err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to initialize policy enforcer: %w", err)
	}

	bnd, err := binding.New(binding.Dependencies{
		Enforcer:     enforcer,
		Roles:        repository.NewBunRoleRepository(db),
		GroupRoles:   repository.NewBunGroupRoleRepository(db),
		GroupMembers: repository.NewBunGroupMemberRepository(db),
	}, cfg.InstanceName)
	if err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to create policy binding: %w", err)
	}

	authorizer, err := authz.NewService(bnd, cfg.Superusers)
	if err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to create authorizer: %w", err)
	}

	return &AuthorizerBundle{
		Authorizer: authorizer,
		Binding:    bnd,
		DB:         db,
	}, nil
}
