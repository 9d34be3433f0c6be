package roles

import "github.com/spf13/cobra"

var (
	descriptionFlag string
	scopeFlag       string
)

// RolesCmd is the parent command for role operations
var RolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage roles",
	Long:  `Commands for managing roles and their group assignments directly against the policy store.`,
}

func init() {
	RolesCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&descriptionFlag, "description", "", "Role description")
	createCmd.Flags().StringVar(&scopeFlag, "scope", "", "Scope expression applied to grants of this role")
	RolesCmd.AddCommand(listCmd)
	RolesCmd.AddCommand(dropCmd)
	RolesCmd.AddCommand(assignCmd)
	RolesCmd.AddCommand(unassignCmd)
}
