package users

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/quarrydb/quarry/internal/config"
	"github.com/quarrydb/quarry/internal/db/bunx"
	"github.com/quarrydb/quarry/internal/db/models"
	"github.com/quarrydb/quarry/internal/repository"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	nameFlag     string
	passwordFlag string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new internal user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if nameFlag == "" {
			return fmt.Errorf("--name flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := &models.User{
			ID:           bunx.NewUUIDv7(),
			Name:         strings.ToUpper(nameFlag),
			PasswordHash: string(hash),
		}
		if err := repository.NewBunUserRepository(db).Create(context.Background(), user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("Created user %s\n", user.Name)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&nameFlag, "name", "", "User name (stored uppercased)")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (prefer --stdin)")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin")
}
