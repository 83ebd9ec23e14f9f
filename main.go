// Package main provides the main entry point for the repair desk API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/repair-desk/app/handlers"
	"github.com/amirphl/repair-desk/app/middleware"
	"github.com/amirphl/repair-desk/app/router"
	"github.com/amirphl/repair-desk/app/scheduler"
	"github.com/amirphl/repair-desk/app/services"
	"github.com/amirphl/repair-desk/app/telemetry"
	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/amirphl/repair-desk/config"
	"github.com/amirphl/repair-desk/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	system    businessflow.RepairSystem
	stopFuncs []func()
	closers   []func(context.Context) error
}

func main() {
	log.Println("Starting repair desk application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog := initializeLogging(cfg.Logging)
	defer closeLog()

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	app.system.Close()
	for _, closeFn := range app.closers {
		if err := closeFn(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger to stdout, a rotating file, or both
func initializeLogging(cfg config.LoggingConfig) func() error {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var out io.Writer = rotator
	if cfg.Output == "both" {
		out = io.MultiWriter(os.Stdout, rotator)
	}
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC)
	log.Printf("Logging to %s (output=%s, max_size=%dMB, max_backups=%d)", cfg.FilePath, cfg.Output, cfg.MaxSize, cfg.MaxBackups)
	return rotator.Close
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	gormLogger := logger.New(log.Default(), logger.Config{
		SlowThreshold:             cfg.SlowQueryTime,
		LogLevel:                  gormLogLevel(logLevel, cfg.SlowQueryLog),
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	if cfg.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("Database schema migrated")
	}

	return db, nil
}

func gormLogLevel(level string, slowQueryLog bool) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	}
	if slowQueryLog {
		return logger.Warn
	}
	return logger.Error
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", opt.Addr, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var (
		stopFuncs []func()
		closers   []func(context.Context) error
	)

	closers = append(closers, telemetry.Setup(context.Background(), telemetry.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Deployment.Version,
		Environment:    cfg.Deployment.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	}))

	// Initialize database
	db, err := initializeDatabase(cfg.Database, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	closers = append(closers, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, cfg.Cache.HealthCheckInterval))
		closers = append(closers, func(context.Context) error { return rc.Close() })
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	technicianRepo := repository.NewTechnicianRepository(db)
	sequenceRepo := repository.NewSequenceCounterRepository(db)
	ticketRepo := repository.NewTicketRepository(db, sequenceRepo)

	// Session state
	refresher := scheduler.NewStateRefresher(rc, cfg.Cache.RedisPrefix, cfg.Reports.RefreshInterval, cfg.Reports.MaxStateAge, log.Default())
	system := businessflow.NewRepairSystem(
		ticketRepo,
		customerRepo,
		technicianRepo,
		businessflow.Observers(middleware.NewStateMetrics(), refresher),
	)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := system.Load(loadCtx); err != nil {
		// The API serves the error state until the refresher recovers
		log.Printf("Initial state load failed: %v", err)
	} else {
		snapshot := system.Snapshot()
		log.Printf("State loaded: %d tickets, %d customers, %d technicians",
			len(snapshot.Tickets), len(snapshot.Customers), len(snapshot.Technicians))
	}
	cancelLoad()

	stopFuncs = append(stopFuncs, refresher.Start(context.Background(), system))

	// Initialize flows
	ticketFlow := businessflow.NewTicketFlow(system)
	customerFlow := businessflow.NewCustomerFlow(system)
	technicianFlow := businessflow.NewTechnicianFlow(system)
	reportFlow := businessflow.NewReportFlow(system, rc, cfg.Cache.RedisPrefix, cfg.Cache.ViewTTL)

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(ticketFlow)
	customerHandler := handlers.NewCustomerHandler(customerFlow)
	technicianHandler := handlers.NewTechnicianHandler(technicianFlow)
	reportHandler := handlers.NewReportHandler(reportFlow)

	// Initialize auth middleware
	var authMiddleware *middleware.AuthMiddleware
	if cfg.Auth.Enabled {
		tokenService, err := services.NewTokenService(
			cfg.Auth.TokenTTL,
			cfg.Auth.Issuer,
			cfg.Auth.Audience,
			cfg.Auth.UseRSAKeys,
			cfg.Auth.PrivateKey,
			cfg.Auth.PublicKey,
			cfg.Auth.SecretKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token service: %w", err)
		}
		authMiddleware = middleware.NewAuthMiddleware(tokenService)
		log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.Auth.Issuer, cfg.Auth.Audience)
	} else {
		log.Println("Staff authentication is disabled")
	}

	// Initialize router
	appRouter := router.NewFiberRouter(
		router.Options{
			AllowOrigins:   cfg.Security.AllowedOrigins,
			RateLimit:      cfg.Security.GlobalRateLimit,
			RateWindow:     cfg.Security.RateLimitWindow,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsPath:    cfg.Metrics.Path,
			Version:        cfg.Deployment.Version,
			BodyLimit:      cfg.Server.BodyLimit,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
		},
		ticketHandler,
		customerHandler,
		technicianHandler,
		reportHandler,
		authMiddleware,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		system:    system,
		stopFuncs: stopFuncs,
		closers:   closers,
	}

	return application, nil
}
