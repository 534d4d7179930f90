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

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/timetracker/internal/application"
	"github.com/example/timetracker/internal/config"
	httptransport "github.com/example/timetracker/internal/http"
	"github.com/example/timetracker/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:           "timetracker",
		Short:         "Work time tracker service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newExportCommand(logger))

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), logger)
		},
	}
}

func newExportCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the session history as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), logger)
		},
	}
}

// buildServices opens the database, applies migrations and seed data, and
// wires the application services. The returned cleanup closes the pool.
func buildServices(ctx context.Context, logger *slog.Logger) (*application.SessionService, *application.CategoryService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return buildServicesWithConfig(ctx, cfg, logger)
}

func buildServicesWithConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application.SessionService, *application.CategoryService, func(), error) {
	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	cleanup := func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}

	if err := sqlite.Migrate(ctx, pool); err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	idGenerator := uuid.NewString
	now := time.Now

	if err := sqlite.SeedDefaultCategories(ctx, pool, idGenerator, now); err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to seed default categories: %w", err)
	}

	categoryRepo := newCategoryRepositoryAdapter(sqlite.NewCategoryRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))
	categoryDirectory := newCategoryDirectoryAdapter(sqlite.NewCategoryRepository(pool))

	categoryService := application.NewCategoryServiceWithLogger(categoryRepo, idGenerator, now, logger)
	sessionService := application.NewSessionServiceWithLogger(sessionRepo, categoryDirectory, idGenerator, now, logger)

	return sessionService, categoryService, cleanup, nil
}

func runServe(ctx context.Context, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sessionService, categoryService, cleanup, err := buildServicesWithConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	sessionHandler := httptransport.NewSessionHandler(sessionService, time.Now, logger)
	categoryHandler := httptransport.NewCategoryHandler(categoryService, logger)
	exportHandler := httptransport.NewExportHandler(sessionService, categoryService, time.Now, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:   sessionHandler,
		Categories: categoryHandler,
		Export:     exportHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timetracker API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runExport(ctx context.Context, logger *slog.Logger) error {
	sessionService, categoryService, cleanup, err := buildServices(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions, err := sessionService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	categories, err := categoryService.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	return application.ExportCSV(os.Stdout, sessions, application.CategoriesByID(categories), time.Now().UTC())
}
