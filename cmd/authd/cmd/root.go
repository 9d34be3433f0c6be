package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/grants"
	"github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd/roles"
	"github.com/BillTheBest/cdap-security-extn/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "authd",
	Short: "Role-based authorization service",
	Long: `authd manages roles, privileges, and group assignments over a shared
policy store and serves enforcement decisions over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	// Add subcommands
	rootCmd.AddCommand(roles.RolesCmd)
	rootCmd.AddCommand(grants.GrantsCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
