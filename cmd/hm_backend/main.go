package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/services"
	"github.com/SscSPs/holistic_money/internal/handlers"
	"github.com/SscSPs/holistic_money/internal/middleware"
	"github.com/SscSPs/holistic_money/internal/platform/config"
	"github.com/SscSPs/holistic_money/internal/repositories/analytics/bigquery"
	"github.com/SscSPs/holistic_money/internal/repositories/database/pgsql"
	"github.com/SscSPs/holistic_money/internal/utils"
	"github.com/SscSPs/holistic_money/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// @title Holistic Money API
// @version 1.0
// @description Multi-tenant financial reporting backend: P&L reports, entry comments and BigQuery sync.

// @host localhost:3001
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Amounts are rendered as JSON numbers, matching what the dashboard expects.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.MaterializeCredentials(); err != nil {
		return fmt.Errorf("failed to write credential files: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		ConnectTimeout:   cfg.DBConnectTimeout,
		StatementTimeout: cfg.DBStatementTimeout,
		CACertFile:       cfg.PGCACertFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	defer database.ClosePgxPool(dbPool, logger)

	monitor := database.NewMonitor(dbPool, cfg.DBHealthInterval, logger)

	repos := pgsql.NewRepositoryProvider(dbPool)
	repos.StoreHealth = monitor
	if cfg.ProjectID == "" {
		logger.Warn("PROJECT_ID not set, BigQuery features disabled")
		repos.FinancialData = bigquery.Unconfigured{}
		repos.Warehouse = bigquery.Unconfigured{}
	} else {
		bqClient, err := bigquery.NewClient(ctx, cfg.ProjectID, cfg.BQLocation, cfg.GoogleCredentialsFile, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize BigQuery client: %w", err)
		}
		repos.FinancialData = bigquery.NewFinancialRepository(bqClient, cfg.PLBudgetView)
		repos.Warehouse = bigquery.NewCommentWarehouse(bqClient, cfg.CommentsTable, cfg.LatestCommentsView)
		logger.Info("BigQuery client initialized", slog.String("project_id", cfg.ProjectID))
	}

	svc, err := services.NewServiceContainer(cfg, repos)
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}

	// Schema and admin bootstrap run on the first successful ping, whether
	// PostgreSQL is up at startup or only comes back later.
	monitor.OnFirstAvailable(func(ctx context.Context) error {
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return err
			}
		}
		if err := svc.User.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("Failed to bootstrap admin user", slog.String("error", err.Error()))
		}
		return nil
	})

	// The server starts even when PostgreSQL is down; reads degrade until it returns.
	if err := monitor.Check(ctx); err != nil {
		if errors.Is(err, database.ErrSetup) {
			return err
		}
		logger.Warn("PostgreSQL unreachable at startup, continuing in degraded mode", slog.String("error", err.Error()))
	}
	go monitor.Run(ctx)

	if cfg.SyncEnabled {
		logger.Info("Starting sync scheduler",
			slog.Duration("interval", cfg.SyncFrequency),
			slog.Bool("run_on_startup", cfg.SyncOnStartup))
		go services.NewSyncScheduler(svc.Sync, cfg.SyncFrequency, cfg.SyncOnStartup).Run(ctx)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	if err := handlers.RegisterRoutes(r, cfg, svc, posthogClient); err != nil {
		return err
	}

	listener, err := listen(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			slog.String("address", listener.Addr().String()),
			slog.Bool("postgres_connected", monitor.Available()))
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// listen binds the configured port, moving on to the next ones while they are in use.
func listen(cfg *config.Config, logger *slog.Logger) (net.Listener, error) {
	var lastErr error
	for i := 0; i <= cfg.PortFallbackAttempts; i++ {
		addr := cfg.Address(i)
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		logger.Warn("Port in use, trying next", slog.String("address", addr))
		lastErr = err
	}
	return nil, fmt.Errorf("no free port after %d attempts: %w", cfg.PortFallbackAttempts+1, lastErr)
}
