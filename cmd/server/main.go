package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "clearance-backend/internal/api/http"
	"clearance-backend/internal/config"
	"clearance-backend/internal/logger"
	"clearance-backend/internal/repository/postgres"
	"clearance-backend/internal/security"
	"clearance-backend/internal/service"
	"clearance-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Clearance Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.Database.DSN())
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Storage
	attachmentStorage, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize attachment storage", "error", err)
		log.Fatalf("Failed to initialize attachment storage: %v", err)
	}
	logger.Info("Attachment storage ready", "upload_dir", cfg.Storage.UploadDir)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	smsSvc := service.NewSMSService(cfg.SMS.Endpoint, cfg.SMS.APIKey, cfg.SMS.Sender)
	resolver := service.NewAssignmentResolver(store.AuthorityRepository)

	workflowSvc := service.NewWorkflowService(
		store.ApplicationRepository,
		store.StudentRepository,
		store.StageRepository,
		store.AuthorityRepository,
		store.NotificationRepository,
		resolver,
		emailSvc,
		smsSvc,
	)
	adminSvc := service.NewAdminService(
		store.AuthorityRepository,
		store.StageRepository,
		store.NotificationRepository,
		emailSvc,
	)
	authSvc := service.NewAuthService(
		store.AuthorityRepository,
		store.StudentRepository,
		tokenManager,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	certificates := service.NewCertificateRenderer(cfg.Institution)

	// Initialize HTTP handlers
	handlers := httpapi.Handlers{
		Auth: httpapi.NewAuthHandler(authSvc),
		Application: httpapi.NewApplicationHandler(
			workflowSvc,
			attachmentStorage,
			certificates,
			store.StudentRepository,
			cfg.Storage.MaxFileSize,
			cfg.Storage.AllowedTypes,
		),
		Authority:     httpapi.NewAuthorityHandler(workflowSvc),
		Admin:         httpapi.NewAdminHandler(adminSvc, workflowSvc),
		Notifications: httpapi.NewNotificationHandler(noteSvc),
	}
	router := httpapi.NewRouter(handlers, httpapi.NewAuthenticator(tokenManager))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("HTTP server listening", "address", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
