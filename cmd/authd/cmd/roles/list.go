package roles

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all roles",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		roles, err := bundle.Authorizer.ListAllRoles(ctx)
		if err != nil {
			return fmt.Errorf("failed to list roles: %w", err)
		}

		if len(roles) == 0 {
			fmt.Println("No roles defined")
			return nil
		}
		for _, role := range roles {
			details, err := bundle.Binding.RoleDetails(ctx, role.Name)
			if err != nil {
				return fmt.Errorf("failed to get role %q: %w", role.Name, err)
			}
			if details.Description != "" {
				fmt.Printf("%s\t%s\n", details.Name, details.Description)
			} else {
				fmt.Println(details.Name)
			}
		}
		return nil
	},
}
