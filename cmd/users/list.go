package users

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/quarrydb/quarry/internal/config"
	"github.com/quarrydb/quarry/internal/db/bunx"
	"github.com/quarrydb/quarry/internal/repository"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		users, err := repository.NewBunUserRepository(db).List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tEXTERNAL\tTEMPORARY\tCREATED\tLAST LOGIN")
		for _, u := range users {
			lastLogin := "-"
			if u.LastLoginAt != nil {
				lastLogin = u.LastLoginAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%t\t%t\t%s\t%s\n",
				u.Name, u.IsExternal(), u.Temporary,
				u.CreatedAt.Format("2006-01-02 15:04:05"), lastLogin)
		}
		return w.Flush()
	},
}
