package roles

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var dropCmd = &cobra.Command{
	Use:   "drop [name]",
	Short: "Delete a role and all of its privileges",
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
		if err := bundle.Authorizer.DropRole(ctx, authz.Role{Name: name}); err != nil {
			return fmt.Errorf("failed to drop role: %w", err)
		}

		fmt.Printf("Role %q dropped\n", name)
		return nil
	},
}
