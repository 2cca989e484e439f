package main

import (
	"context"
	"customer-service/internal/api"
	"customer-service/internal/batch"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"customer-service/internal/event"
	"customer-service/internal/infrastructure/database/memory"
	"customer-service/internal/infrastructure/database/postgres"
	"customer-service/internal/infrastructure/logging"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const (
	cronStopTimeout     = 15 * time.Second
	serverStopTimeout   = 20 * time.Second
	serverExitTimeout   = 5 * time.Second
	poolStatsJobTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := initializeApp(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repo, dbPool, err := initializeRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if dbPool != nil {
		defer closeDatabase(dbPool, logger)
	}

	publisher, closePublisher, err := initializePublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	customerService := customer.NewCustomerService(repo, publisher, logger)

	cronScheduler := startBatchJobs(cfg, logger, dbPool)
	router := api.SetupRouter(ctx, customerService, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	return handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "config_path", path, "database_driver", cfg.Database.Driver)

	return cfg, logger, nil
}

// initializeRepository returns the pool only for the postgres driver.
func initializeRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (customer.CustomerRepository, *pgxpool.Pool, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory customer repository; data is lost on restart")
		return memory.NewCustomerRepository(logger), nil, nil
	case config.DriverPostgres, "":
		if cfg.Database.AutoMigrate {
			if err := runMigrations(cfg.Database, migrateUp, logger); err != nil {
				return nil, nil, err
			}
		}

		logger.Info("Initializing database connection pool...")
		dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("Failed to initialize database connection pool", "error", err)
			return nil, nil, err
		}
		return postgres.NewCustomerRepository(dbPool, logger), dbPool, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.EventPublisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled, customer events will not be published")
		return event.NoopEventPublisher{}, func() {}, nil
	}

	conn, err := event.Dial(cfg.RabbitMQ)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		return nil, nil, err
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return publisher, func() {
		logger.Info("Closing RabbitMQ connection...")
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close RabbitMQ connection", "error", err)
		}
	}, nil
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
			return
		}
		logger.Info("Server closed gracefully.")
		serverErrors <- nil
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) error {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			stopCron(cronScheduler, logger)
			return err
		}
		logger.Info("Server goroutine finished before signal.")
		stopCron(cronScheduler, logger)
		return nil
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)
	stopCron(cronScheduler, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverStopTimeout)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(serverExitTimeout):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
	return nil
}

func stopCron(cronScheduler *cron.Cron, logger *slog.Logger) {
	logger.Info("Stopping cron scheduler...")
	select {
	case <-cronScheduler.Stop().Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(cronStopTimeout):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

// startBatchJobs schedules pool sampling when a postgres pool is in use. The
// scheduler is always started so shutdown handling stays uniform.
func startBatchJobs(cfg *config.Config, logger *slog.Logger, dbPool *pgxpool.Pool) *cron.Cron {
	c := cron.New()
	if dbPool != nil {
		schedulePoolStatsJob(c, cfg.Batch, batch.NewPoolStatsJob(batch.PgxPoolStats{Pool: dbPool}, logger), logger)
	}
	c.Start()
	logger.Info("Cron scheduler started.", "jobs", len(c.Entries()))
	return c
}

func schedulePoolStatsJob(c *cron.Cron, cfg config.BatchConfig, job *batch.PoolStatsJob, logger *slog.Logger) {
	scheduleSpec := cfg.PoolStatsSchedule
	if scheduleSpec == "" {
		scheduleSpec = "@every 30s"
		logger.Warn("Pool stats schedule not configured, using default", "schedule", scheduleSpec)
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), poolStatsJobTimeout)
		defer cancel()

		if runErr := job.Run(ctx); runErr != nil {
			logger.Error("Pool stats job finished with error", "job_name", "PoolStats", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule pool stats job", "schedule", scheduleSpec, slog.Any("error", err))
		return
	}
	logger.Info("Scheduled pool stats job", "schedule", scheduleSpec, "job_id", jobID)
}
