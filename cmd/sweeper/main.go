package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"adspace-backend/internal/config"
	"adspace-backend/internal/events"
	"adspace-backend/internal/jobs"
	"adspace-backend/internal/logger"
	"adspace-backend/internal/repository/postgres"
	"adspace-backend/internal/scheduler"
	"adspace-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-claims', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Adspace Sweeper...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Status events emitted by the sweep have no transport adapter here, so
	// drain them into the debug log.
	bus := events.NewBus(64)
	go func() {
		for e := range bus.Events() {
			logger.Debug("Status event", "type", e.Type, "unit_id", e.UnitID, "status", e.Status)
		}
	}()

	// Initialize Services
	emailService := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	notificationService := service.NewNotificationService(
		store.Notifications(),
		store.Users(),
		emailService,
	)

	unitService := service.NewUnitService(store, bus)

	claimService := service.NewClaimService(
		store,
		notificationService,
		unitService,
		bus,
		service.ClaimOptions{
			TTL:                  time.Duration(cfg.Claims.TTLHours) * time.Hour,
			EscalateToManagement: cfg.Claims.EscalateToManagement,
		},
	)

	jobServices := &jobs.Services{
		Email: emailService,
		Claim: claimService,
		Unit:  unitService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Sweeper scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down sweeper scheduler...")
	cronScheduler.Stop()
	logger.Info("Sweeper scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "expire-claims":
		jobRunner.ExpireClaims()
	case "all":
		jobRunner.RunAllSweepJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expire-claims\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
