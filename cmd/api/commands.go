package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/app"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/migrations"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type overrides struct {
	port  string
	store string
}

func newRootCmd() *cobra.Command {
	var o overrides
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Serve the task API and browser client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(o)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg, log); err != nil {
				log.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&o.store, "store", "", "store driver (memory, file, postgres, neo4j); overrides STORE_DRIVER")
	root.Flags().StringVarP(&o.port, "port", "p", "", "listen port; overrides HTTP_PORT")

	root.AddCommand(newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply postgres migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(overrides{store: config.DriverPostgres})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			if err := migrations.Up(cfg.PG.DSN); err != nil {
				log.Error("migrate failed", "error", err)
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

// load reads the environment, applies flag overrides, validates the result
// once and builds the logger.
func load(o overrides) (config.Config, *slog.Logger, error) {
	cfg, err := config.Read()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	if o.port != "" {
		cfg.HTTP.Port = o.port
	}
	if o.store != "" {
		cfg.Store.Driver = o.store
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}

	log := logging.New(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat)
	slog.SetDefault(log)
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, log, nil
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		_ = application.Close(context.Background())
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return application.Close(shutdownCtx)
}
