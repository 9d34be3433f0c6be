package roles

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

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
		if err := bundle.Binding.CreateRoleDetailed(ctx, name, descriptionFlag, scopeFlag); err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		fmt.Printf("Role %q created\n", name)
		return nil
	},
}
