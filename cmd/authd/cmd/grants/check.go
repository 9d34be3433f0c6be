package grants

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/cmdutil"
	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check [user] [entity-path] [action]",
	Short: "Check whether a user may perform an action on an entity",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, entityPath, rawAction := args[0], args[1], args[2]

		action, err := authz.ParseAction(rawAction)
		if err != nil {
			return err
		}
		entity, err := authz.ParseEntityPath(entityPath)
		if err != nil {
			return err
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
		principal := authz.Principal{Name: user, Type: authz.PrincipalTypeUser}
		err = bundle.Authorizer.Enforce(ctx, entity, principal, action)

		var unauthorized *authz.UnauthorizedError
		switch {
		case err == nil:
			fmt.Printf("ALLOWED: %s may %s on %s\n", user, action, entity.Path())
			return nil
		case errors.As(err, &unauthorized):
			fmt.Printf("DENIED: %s may not %s on %s\n", user, action, entity.Path())
			return nil
		default:
			return fmt.Errorf("enforcement check failed: %w", err)
		}
	},
}
