package grants

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke [role] [entity-path]",
	Short: "Revoke actions on an entity from a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		roleName, entityPath := args[0], args[1]

		actions, err := parseActions(actionsFlag)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		entity, err := authz.ParseEntityPath(entityPath)
		if err != nil {
			return err
		}

		bundle, err := cmdutil.NewAuthorizerBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		ctx := context.Background()
		principal := authz.Principal{Name: roleName, Type: authz.PrincipalTypeRole}
		if err := bundle.Authorizer.Revoke(ctx, entity, principal, actions); err != nil {
			return fmt.Errorf("failed to revoke: %w", err)
		}

		fmt.Printf("Revoked %v on %s from role %q\n", actions, entity.Path(), roleName)
		return nil
	},
}
