package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "autofleet-backoffice/internal/api/http"
	"autofleet-backoffice/internal/config"
	"autofleet-backoffice/internal/jobs"
	"autofleet-backoffice/internal/logger"
	"autofleet-backoffice/internal/repository/postgres"
	"autofleet-backoffice/internal/scheduler"
	"autofleet-backoffice/internal/security"
	"autofleet-backoffice/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AutoFleet back office...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Services
	authSvc := service.NewAuthService(store.Users(), tokenManager)
	vehicleSvc := service.NewVehicleService(store.Vehicles(), store.Reservations())
	clientSvc := service.NewClientService(store.Clients(), store.Reservations())
	reservationSvc := service.NewReservationService(store)
	dashboardSvc := service.NewDashboardService(store.Dashboard(), store.Vehicles(), store.Clients(), store.Reservations())
	emailSvc := service.NewSendgridEmailService(cfg.Email.SendgridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Email:     emailSvc,
		Dashboard: dashboardSvc,
	}, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Initialize Router
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Tokens:       tokenManager,
		Auth:         authSvc,
		Vehicles:     vehicleSvc,
		Clients:      clientSvc,
		Reservations: reservationSvc,
		Dashboard:    dashboardSvc,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
