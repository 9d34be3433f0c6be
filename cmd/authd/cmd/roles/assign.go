package roles

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var assignCmd = &cobra.Command{
	Use:   "assign [role] [group]",
	Short: "Assign a role to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		roleName, group := args[0], args[1]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		bundle, err := cmdutil.NewAuthorizerBundle(cfg)
		if err != nil {
			return err
		}
		defer bundle.Close()

		ctx := context.Background()
		principal := authz.Principal{Name: group, Type: authz.PrincipalTypeGroup}
		if err := bundle.Authorizer.AddRoleToPrincipal(ctx, authz.Role{Name: roleName}, principal); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}

		fmt.Printf("Role %q assigned to group %q\n", roleName, group)
		return nil
	},
}
