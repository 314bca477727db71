package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/odvhub/odvhub-backend/config"
	"github.com/odvhub/odvhub-backend/internal/app/controller"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"github.com/odvhub/odvhub-backend/internal/app/service"
	"github.com/odvhub/odvhub-backend/internal/db"
	"github.com/odvhub/odvhub-backend/internal/middleware"
	"github.com/odvhub/odvhub-backend/internal/router"
	"github.com/odvhub/odvhub-backend/internal/scheduler"
	"github.com/odvhub/odvhub-backend/internal/storage"
	ws "github.com/odvhub/odvhub-backend/internal/websocket"
	"github.com/odvhub/odvhub-backend/pkg/captcha"
	"github.com/odvhub/odvhub-backend/pkg/logger"
	"github.com/odvhub/odvhub-backend/pkg/mailer"
	"github.com/odvhub/odvhub-backend/pkg/pdf"
	"github.com/odvhub/odvhub-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting ODV Hub Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (backs the single-use CSRF token store)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize artifact storage
	artifactStore, err := storage.New(cfg.Artifacts)
	if err != nil {
		logger.Fatal("Failed to initialize artifact storage", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	appRepo := repository.NewApplicationRepository(db.GetDB())
	memberRepo := repository.NewMemberRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())

	// WebSocket hub for the staff dashboard feed
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	smtpMailer := mailer.New(cfg.SMTP)
	renderer := pdf.NewRenderer("ODV Hub")

	authService := service.NewAuthService(userRepo, cfg.JWT)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, hub)
	provisioningService := service.NewProvisioningService(memberRepo)
	artifactService := service.NewArtifactService(appRepo, renderer, artifactStore, smtpMailer)
	applicationService := service.NewApplicationService(
		db.GetDB(),
		appRepo,
		service.NewConsentValidator(),
		provisioningService,
		artifactService,
		notificationService,
		captcha.New(cfg.Captcha),
		smtpMailer,
	)
	memberService := service.NewMemberService(memberRepo)
	exportService := service.NewExportService(appRepo, memberRepo)
	digestService := service.NewDigestService(appRepo, userRepo, smtpMailer)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	applicationController := controller.NewApplicationController(applicationService, memberService, artifactService)
	memberController := controller.NewMemberController(memberService)
	notificationController := controller.NewNotificationController(notificationService)
	exportController := controller.NewExportController(exportService)
	wsController := controller.NewWebSocketController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	csrfMiddleware := middleware.NewCSRFMiddleware(redis.NewTokenStore())

	// Start the daily pending-queue digest
	digestScheduler := scheduler.NewDigestScheduler(digestService)
	if err := digestScheduler.Start(); err != nil {
		logger.Error("Failed to start digest scheduler", err)
	}
	defer digestScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		applicationController,
		memberController,
		notificationController,
		exportController,
		wsController,
		authMiddleware,
		csrfMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
