package cmd

import (
	"fmt"
	"os"

	"github.com/quarrydb/quarry/cmd/users"
	"github.com/quarrydb/quarry/internal/config"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "quarry-authd",
	Short: "Authentication service for the Quarry database engine",
	Long: `quarry-authd decides, for an incoming connection carrying a username,
password and an optional realm, whether the principal is valid, which database
user it maps to and which roles that user holds for the session. Realms are
pluggable and declared in quarry-auth.yaml.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		// Flags override the environment.
		if v, _ := cmd.Flags().GetString("db-url"); v != "" {
			cfg.DatabaseURL = v
		}
		if v, _ := cmd.Flags().GetString("server-addr"); v != "" {
			cfg.ServerAddr = v
		}
		if v, _ := cmd.Flags().GetString("auth-config"); v != "" {
			cfg.AuthConfigFile = v
		}
		if v, _ := cmd.Flags().GetBool("debug"); v {
			cfg.Debug = true
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().String("auth-config", "", "Authentication configuration file (env: AUTH_CONFIG_FILE)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
