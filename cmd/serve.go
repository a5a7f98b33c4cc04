package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quarrydb/quarry/internal/authn"
	"github.com/quarrydb/quarry/internal/authn/mappers"
	"github.com/quarrydb/quarry/internal/authn/validators"
	"github.com/quarrydb/quarry/internal/catalog"
	"github.com/quarrydb/quarry/internal/db/bunx"
	"github.com/quarrydb/quarry/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authentication service",
	Long:  `Starts the HTTP server the engine's connection layer authenticates against.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		cat := catalog.NewBunCatalog(db)

		// Session-scoped users, roles and grants do not survive a restart.
		if err := cat.PurgeTemporary(cmd.Context()); err != nil {
			return fmt.Errorf("failed to purge temporary catalog objects: %w", err)
		}

		registry := authn.NewRegistry()
		validators.Register(registry)
		mappers.Register(registry)

		manager := authn.NewManager(authn.ManagerOptions{
			Registry:           registry,
			Selector:           cfg.Authenticator,
			ConfigPath:         cfg.AuthConfigFile,
			AllowInternalUsers: cfg.AllowInternalUsers,
		})

		routerOpts := server.RouterOptions{
			Handlers: server.NewAuthHandlers(manager, cat),
			Debug:    cfg.Debug,
		}
		if len(cfg.CORSOrigins) > 0 {
			corsOpts := server.CORSOptionsForOrigins(cfg.CORSOrigins)
			routerOpts.CORSOptions = &corsOpts
		}
		router := server.NewRouter(routerOpts)

		httpServer := &http.Server{
			Addr:              cfg.ServerAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Listening on %s", cfg.ServerAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-stop:
			log.Printf("Received %s, shutting down", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
