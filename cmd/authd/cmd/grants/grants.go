package grants

import "github.com/spf13/cobra"

var actionsFlag []string

// GrantsCmd is the parent command for privilege operations
var GrantsCmd = &cobra.Command{
	Use:   "grants",
	Short: "Manage privileges",
	Long:  `Commands for granting, revoking, listing, and checking privileges directly against the policy store.`,
}

func init() {
	GrantsCmd.AddCommand(addCmd)
	addCmd.Flags().StringSliceVar(&actionsFlag, "action", []string{}, "Action(s) to grant (read, write, execute, admin, all)")
	GrantsCmd.AddCommand(revokeCmd)
	revokeCmd.Flags().StringSliceVar(&actionsFlag, "action", []string{}, "Action(s) to revoke (read, write, execute, admin, all)")
	GrantsCmd.AddCommand(listCmd)
	GrantsCmd.AddCommand(checkCmd)
}
