package grants

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var addCmd = &cobra.Command{
	Use:   "add [role] [entity-path]",
	Short: "Grant actions on an entity to a role",
	Long: `Grants privileges for the given actions on an entity to a role.
Entity paths are slash-separated type/name pairs, e.g.
namespace/prod/application/orders.`,
	Args: cobra.ExactArgs(2),
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
		if err := bundle.Authorizer.Grant(ctx, entity, principal, actions); err != nil {
			return fmt.Errorf("failed to grant: %w", err)
		}

		fmt.Printf("Granted %v on %s to role %q\n", actions, entity.Path(), roleName)
		return nil
	},
}

// parseActions validates the --action flag values.
func parseActions(raw []string) ([]authz.Action, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one action must be specified using --action")
	}

	actions := make([]authz.Action, 0, len(raw))
	for _, s := range raw {
		action, err := authz.ParseAction(s)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}
