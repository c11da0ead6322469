// Showroom - dealership catalog and back-office API
// Entry point for the web server and admin commands
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/findosh/showroom/internal/config"
	"github.com/findosh/showroom/internal/handlers"
	"github.com/findosh/showroom/internal/logging"
	"github.com/findosh/showroom/internal/media"
	"github.com/findosh/showroom/internal/services/auth"
	"github.com/findosh/showroom/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds what every command needs once config is loaded
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	var configFile string
	a := &app{}

	cmd := &cobra.Command{
		Use:          "showroom",
		Short:        "Dealership catalog and back-office API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(os.Stdout, cfg.LogLevel, cfg.IsDevelopment())
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (default: $SHOWROOM_CONFIG, then env only)")

	cmd.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newCreateAdminCmd(a),
	)
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return nil
		},
	}
}

func newCreateAdminCmd(a *app) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := a.authService(db).CreateAdmin(ctx, auth.CreateAdminInput{
				Email:    email,
				Password: password,
				Name:     name,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			a.logger.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("admin created")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// openDB connects and brings the schema up to date
func (a *app) openDB(ctx context.Context) (*storage.DB, error) {
	db, err := storage.New(a.cfg.Database.Driver, a.cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	applied, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.logger.Info().Int("applied", applied).Str("driver", a.cfg.Database.Driver).Msg("database ready")
	return db, nil
}

func (a *app) authService(db *storage.DB) *auth.Service {
	return auth.NewService(
		storage.NewUserRepository(db),
		auth.NewTokenIssuer(a.cfg.SecretKey),
		auth.NewPasswordHasher(auth.BcryptCost),
	)
}

func (a *app) mediaStore(ctx context.Context) (media.Store, error) {
	switch a.cfg.Media.Backend {
	case "s3":
		return media.NewS3Store(ctx, a.cfg.Media.S3)
	default:
		return media.NewDiskStore(a.cfg.Media.UploadDir)
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := a.mediaStore(ctx)
	if err != nil {
		return fmt.Errorf("media store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := handlers.New(a.cfg, db, a.authService(db), store)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           h.Router(a.logger, reg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("addr", srv.Addr).
			Str("environment", a.cfg.Environment).
			Str("media", a.cfg.Media.Backend).
			Msg("showroom server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
