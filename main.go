package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/config"
	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/bagusrestoration/bengkel-progress-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	cfg *config.Config

	staffEmail    string
	staffName     string
	staffPassword string
)

// rootCmd starts the API server when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "bengkel",
	Short: "Bengkel Progress API - repair job tracking for the workshop",
	Long: `Bengkel Progress API keeps the workshop's repair job records, serves the
staff dashboard API and answers customer progress lookups by code.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded

		if _, err := logger.Init(cfg.LogLevel, cfg.IsDevelopment()); err != nil {
			return err
		}
		logConfigLoad(cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE:  runMigrate,
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage staff accounts for the local identity provider",
}

var staffAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a staff account",
	Long: `Creates a staff account that can sign in to the dashboard.

Only used with AUTH_PROVIDER=local; Auth0 users are managed in Auth0.

Example:
  bengkel staff add --email admin@bengkel.id --name Admin --password rahasia123`,
	RunE: runStaffAdd,
}

var linkCmd = &cobra.Command{
	Use:   "link [code]",
	Short: "Print the customer lookup link for a job code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), utils.BuildLookupLink(cfg.LookupBaseURL, args[0]))
		return nil
	},
}

func init() {
	staffAddCmd.Flags().StringVar(&staffEmail, "email", "", "staff email address")
	staffAddCmd.Flags().StringVar(&staffName, "name", "", "display name")
	staffAddCmd.Flags().StringVar(&staffPassword, "password", "", "initial password (min 8 characters)")
	_ = staffAddCmd.MarkFlagRequired("email")
	_ = staffAddCmd.MarkFlagRequired("name")
	_ = staffAddCmd.MarkFlagRequired("password")

	staffCmd.AddCommand(staffAddCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, staffCmd, linkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.L()
	log.Info("starting Bengkel Progress API", zap.String("env", cfg.GoEnv))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := connectAndMigrate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, config.GetDB())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		// job streams end when the process is asked to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server is running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := connectAndMigrate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Database migration completed successfully")
	return nil
}

func runStaffAdd(cmd *cobra.Command, args []string) error {
	if cfg.AuthProvider != "local" {
		return fmt.Errorf("staff accounts are managed by %s, not this command", cfg.AuthProvider)
	}
	if err := connectAndMigrate(); err != nil {
		return err
	}

	identity := services.NewLocalIdentity(config.GetDB(), cfg.JWTSecret, cfg.SessionTTL)
	account, err := identity.CreateStaff(cmd.Context(), staffEmail, staffName, staffPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created staff account %s (id %d)\n", account.Email, account.ID)
	return nil
}

// logConfigLoad reports where configuration came from once the logger exists
func logConfigLoad(cfg *config.Config) {
	log := logger.L()
	if cfg.EnvFile != "" {
		log.Info("loaded configuration", zap.String("file", cfg.EnvFile), zap.String("env", cfg.GoEnv))
	} else {
		log.Info("no .env file found, using system environment variables", zap.String("env", cfg.GoEnv))
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}
}

func connectAndMigrate() error {
	if err := config.ConnectDatabase(cfg); err != nil {
		return err
	}
	if err := config.Migrate(config.GetDB()); err != nil {
		return err
	}
	logger.L().Info("database migration completed")
	return nil
}
