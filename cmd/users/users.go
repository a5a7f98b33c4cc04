package users

import (
	"github.com/spf13/cobra"
)

// UsersCmd groups internal user management commands.
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage internal database users",
	Long:  `Commands for creating and inspecting internal (locally authenticated) users.`,
}

func init() {
	UsersCmd.AddCommand(createCmd)
	UsersCmd.AddCommand(listCmd)
}
