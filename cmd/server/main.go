/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment)
  2. Apply command-line flag overrides
  3. Initialize SQLite store
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port (APP_PORT, default: 8080)
  -db      SQLite database path (DB_PATH, default: attendance.db)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/attendance.db"

  # Run with in-memory database and debug logs
  LOG_LEVEL=debug ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB.Path, "SQLite database path")
	flag.Parse()
	cfg.App.Port = *port
	cfg.DB.Path = *dbPath
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := api.NewLogger(os.Stdout, cfg.SlogLevel(),
		slog.String("app", "attendance-engine"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, logger)
	handler.DefaultShift = cfg.DefaultShift
	handler.UploadMaxBytes = cfg.UploadMaxBytes()

	requestLevel := slog.LevelInfo
	if !cfg.IsProduction() {
		requestLevel = slog.LevelDebug
	}
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins:  cfg.CORSOrigins,
		RequestLogLevel: requestLevel,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.Int("port", cfg.App.Port),
			slog.String("db", cfg.DB.Path),
			slog.String("default_shift", string(cfg.DefaultShift)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
