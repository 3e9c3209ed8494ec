// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-backoffice",
	Short: "GoBackOffice is a web-based admin back-office",
	Long: `GoBackOffice is a web-based admin back-office that provides
an easy-to-use interface for managing users, roles, permissions and
application settings.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
