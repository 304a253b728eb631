package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"autofleet-backoffice/internal/config"
	"autofleet-backoffice/internal/jobs"
	"autofleet-backoffice/internal/logger"
	"autofleet-backoffice/internal/repository/postgres"
	"autofleet-backoffice/internal/scheduler"
	"autofleet-backoffice/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'overdue-sweep', 'document-expiry-sweep', 'license-expiry-sweep', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AutoFleet cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	emailSvc := service.NewSendgridEmailService(cfg.Email.SendgridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	dashboardSvc := service.NewDashboardService(store.Dashboard(), store.Vehicles(), store.Clients(), store.Reservations())

	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Email:     emailSvc,
		Dashboard: dashboardSvc,
	}, cfg)

	// One-shot mode for manual runs and container cron
	if *runOnce != "" {
		switch *runOnce {
		case "overdue-sweep":
			jobRunner.OverdueSweep()
		case "document-expiry-sweep":
			jobRunner.DocumentExpirySweep()
		case "license-expiry-sweep":
			jobRunner.LicenseExpirySweep()
		case "all-nightly":
			jobRunner.RunAllNightlyJobs()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		logger.Info("One-shot run finished", "job", *runOnce)
		return
	}

	// Daemon mode: run the cron scheduler until interrupted
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Cronjob runner stopping...")
}
