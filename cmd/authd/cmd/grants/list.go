package grants

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list [type] [name]",
	Short: "List privileges held by a principal",
	Long: `Lists the privileges held by a principal. For users and groups the
result is the union over every role they hold.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawType, name := args[0], args[1]

		var ptype authz.PrincipalType
		switch authz.PrincipalType(rawType) {
		case authz.PrincipalTypeUser, authz.PrincipalTypeGroup, authz.PrincipalTypeRole:
			ptype = authz.PrincipalType(rawType)
		default:
			return fmt.Errorf("unknown principal type %q (expected user, group, or role)", rawType)
		}

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
		privileges, err := bundle.Authorizer.ListPrivileges(ctx, authz.Principal{Name: name, Type: ptype})
		if err != nil {
			return fmt.Errorf("failed to list privileges: %w", err)
		}

		if len(privileges) == 0 {
			fmt.Println("No privileges")
			return nil
		}
		for _, p := range privileges {
			fmt.Printf("%s\t%s\n", p.Entity.Path(), p.Action)
		}
		return nil
	},
}
