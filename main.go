// Package main provides the main entry point for the eligibility roster service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amirphl/Eligibility-Roster/app/handlers"
	"github.com/amirphl/Eligibility-Roster/app/middleware"
	"github.com/amirphl/Eligibility-Roster/app/router"
	"github.com/amirphl/Eligibility-Roster/app/scheduler"
	"github.com/amirphl/Eligibility-Roster/app/services"
	businessflow "github.com/amirphl/Eligibility-Roster/business_flow"
	"github.com/amirphl/Eligibility-Roster/config"
	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/models"
	"github.com/amirphl/Eligibility-Roster/repository"
	"github.com/amirphl/Eligibility-Roster/roster"
)

const (
	startupLoadTimeout  = 2 * time.Minute
	cacheHealthInterval = 30 * time.Second
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	logger    *log.Logger
	stopFuncs []func()
}

func main() {
	log.Println("Starting eligibility roster...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		app.logger.Printf("Server starting on %s", address)

		if err := app.router.Start(address); err != nil {
			app.logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	app.logger.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		app.logger.Printf("Error during shutdown: %v", err)
	}

	// Stop background workers and release resources, newest first
	for i := len(app.stopFuncs) - 1; i >= 0; i-- {
		app.stopFuncs[i]()
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logger *log.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	gormCfg := &gorm.Config{}
	if cfg.SlowQueryLog {
		gormCfg.Logger = gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.EligibleCustomer{}, &models.LookupRecord{}, &models.PartitionSet{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	logger.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig, logger *log.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
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

	logger.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis to detect connectivity issues. The returned
// function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration, logger *log.Logger) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					logger.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// initializePartitionStorage picks the backend of the called partition
func initializePartitionStorage(cfg config.RosterConfig, db *gorm.DB, rc *redis.Client, prefix string) (roster.Storage, error) {
	switch cfg.PartitionBackend {
	case config.PartitionBackendRedis:
		if rc == nil {
			return nil, fmt.Errorf("partition backend %q needs the redis cache", cfg.PartitionBackend)
		}
		return services.NewRedisPartitionStorage(rc, prefix), nil
	case config.PartitionBackendPostgres:
		return repository.NewPartitionSetRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown partition backend %q", cfg.PartitionBackend)
	}
}

// seedEligibleCustomers upserts the seed file into the eligibility table
func seedEligibleCustomers(ctx context.Context, resolver *services.EligibilityResolverImpl, path string, logger *log.Logger) error {
	customers, err := services.LoadEligibilitySeed(path)
	if err != nil {
		return err
	}
	n, err := resolver.Seed(ctx, customers)
	if err != nil {
		return fmt.Errorf("failed to seed eligible customers: %w", err)
	}
	logger.Printf("Seeded %d eligible customers from %s", n, path)
	return nil
}

// initializeApplication wires storage, the roster engine, flows, handlers and background jobs
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	logger, closeLog := cfg.Logging.NewLogger("")
	accessLog, closeAccessLog := cfg.Logging.AccessLogWriter()
	app := &Application{
		config: cfg,
		logger: logger,
		stopFuncs: []func(){
			func() { _ = closeLog() },
			func() { _ = closeAccessLog() },
		},
	}

	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app.stopFuncs = append(app.stopFuncs, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	rc, err := initializeCache(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		app.stopFuncs = append(app.stopFuncs, func() { _ = rc.Close() })
		app.stopFuncs = append(app.stopFuncs, startCacheHealthMonitor(context.Background(), rc, cacheHealthInterval, logger))
	}

	// Repositories
	customerRepo := repository.NewEligibleCustomerRepository(db)
	lookupRepo := repository.NewLookupRecordRepository(db)

	// Services
	var identityCache *redis.Client
	if cfg.JWT.CheckRevocation {
		identityCache = rc
	}
	identity, err := services.NewIdentityService(cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.UseRSAKeys, cfg.JWT.PublicKey, cfg.JWT.SecretKey, identityCache)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}
	resolver := services.NewEligibilityResolver(customerRepo, rc, cfg.Roster.BulkCacheTTL, logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), startupLoadTimeout)
	defer cancelLoad()

	if cfg.Roster.SeedFile != "" {
		if err := seedEligibleCustomers(loadCtx, resolver, cfg.Roster.SeedFile, logger); err != nil {
			return nil, err
		}
	}

	partitionStorage, err := initializePartitionStorage(cfg.Roster, db, rc, cfg.Cache.RedisPrefix)
	if err != nil {
		return nil, err
	}

	// Roster state
	engine := roster.NewEngine(roster.NewPartitionStore(partitionStorage, cfg.Roster.PartitionKey, logger), logger)
	history := lookuplog.New(services.NewLookupHistoryStore(lookupRepo), logger)
	sessions := roster.NewSessionRegistry(engine)

	loader := businessflow.NewRosterLoader(resolver, engine, history, logger)
	summary, err := loader.Load(loadCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	logger.Printf("Roster loaded: %d customers, %d called, %d lookups", summary.Customers, summary.Called, summary.Lookups)

	exportLoc, err := cfg.Roster.ExportLocation()
	if err != nil {
		return nil, fmt.Errorf("invalid export timezone: %w", err)
	}

	// Business flows
	eligibilityFlow := businessflow.NewEligibilityFlow(resolver, history, cfg.Roster.CheckLatency, logger)
	callListFlow := businessflow.NewCallListFlow(engine, businessflow.CallListConfig{
		RowHeight:      cfg.Roster.RowHeight,
		ViewportHeight: cfg.Roster.ViewportHeight,
		Overscan:       cfg.Roster.Overscan,
	})
	historyFlow := businessflow.NewLookupHistoryFlow(history, exportLoc)

	// Background jobs
	rosterScheduler := scheduler.NewRosterScheduler(loader, engine.Partition(), sessions, logger, cfg.Roster.RefreshInterval, cfg.Roster.SessionIdleTimeout)
	app.stopFuncs = append(app.stopFuncs, rosterScheduler.Start(context.Background()))

	// HTTP
	h := router.Handlers{
		Health:        handlers.NewHealthHandler(engine, history, sessions),
		Eligibility:   handlers.NewEligibilityHandler(eligibilityFlow),
		CallList:      handlers.NewCallListHandler(callListFlow),
		LookupHistory: handlers.NewLookupHistoryHandler(historyFlow),
	}
	app.router = router.NewFiberRouter(cfg, h, middleware.NewAuthMiddleware(identity, sessions), accessLog, logger)

	return app, nil
}
