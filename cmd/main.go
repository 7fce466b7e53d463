package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"pointeuse/internal/caching"
	"pointeuse/internal/config"
	"pointeuse/internal/handlers"
	"pointeuse/internal/jobs"
	"pointeuse/internal/jobs/background"
	"pointeuse/internal/middleware"
	"pointeuse/internal/repositories"
	"pointeuse/internal/secrets"
	"pointeuse/internal/services"
	"pointeuse/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// WhatsApp credentials may be sealed with the master key
	var box *secrets.Box
	if cfg.Secrets.MasterKey != "" {
		box, err = secrets.NewBox(cfg.Secrets.MasterKey)
		if err != nil {
			log.Fatalf("Failed to initialize secrets: %v", err)
		}
	}
	accessToken, credentialStatus := secrets.Resolve(box, cfg.WhatsApp.AccessToken)

	var whatsappSvc services.WhatsAppService
	if credentialStatus == secrets.StatusOK && cfg.WhatsApp.PhoneNumberID != "" {
		whatsappSvc = services.NewWhatsAppService(cfg.WhatsApp.APIBaseURL, cfg.WhatsApp.PhoneNumberID, accessToken, cfg.WhatsApp.Timeout)
	} else {
		log.Printf("WARNING: WhatsApp credentials %s, outbound messages are only logged", credentialStatus)
		whatsappSvc = services.NewLogSender()
	}

	minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
		cfg.Minio.UseSSL, cfg.Minio.Bucket, cfg.Minio.PresignExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(ctx); err != nil {
		log.Printf("WARNING: bucket %s unavailable: %v", cfg.Minio.Bucket, err)
	}

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Jobs.TurnLockTTL)

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	employeeRepo := repositories.NewEmployeeRepo(pool)
	siteRepo := repositories.NewSiteRepo(pool)
	attendanceRepo := repositories.NewAttendanceRepo(pool)
	expenseRepo := repositories.NewExpenseRepo(pool)
	documentRepo := repositories.NewDocumentRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	reminderRepo := repositories.NewReminderRepo(pool)
	txManager := repositories.NewTransactionManager(pool)

	// Services
	notificationSvc := services.NewNotificationService(notificationRepo, employeeRepo, whatsappSvc)
	employeeSvc := services.NewEmployeeService(employeeRepo, tenantRepo)
	conversationSvc := services.NewConversationService(employeeRepo, expenseRepo, txManager, notificationSvc)
	attendanceSvc := services.NewAttendanceService(attendanceRepo, siteRepo, notificationSvc)
	documentSvc := services.NewDocumentService(documentRepo, minioSvc)
	botSvc := services.NewBotService(employeeSvc, conversationSvc, attendanceSvc, documentSvc, whatsappSvc, minioSvc, cacheSvc)

	// Reminder scans
	runner := jobs.NewRunner(
		jobs.NewMorningNudgeJob(tenantRepo, employeeRepo, reminderRepo, whatsappSvc, notificationSvc),
		jobs.NewGhostSessionJob(attendanceRepo, whatsappSvc, cfg.Jobs.GhostCooldown),
	)
	scheduler, err := background.NewJobScheduler(runner, cfg.Jobs.MorningNudgeCron, cfg.Jobs.GhostSessionCron,
		cfg.Jobs.TickInterval, time.Now())
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}

	webhookHandlers := handlers.NewWebhookHandlers(botSvc, cfg.WhatsApp.VerifyToken)
	jobHandlers := handlers.NewJobHandlers(runner, scheduler)
	employeeHandlers := handlers.NewEmployeeHandlers(employeeSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, credentialStatus, version)

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	webhooks := e.Group("/webhooks")
	webhooks.Use(middleware.WebhookSignature(cfg.WhatsApp.AppSecret))
	webhooks.GET("/whatsapp", webhookHandlers.Verify)
	webhooks.POST("/whatsapp", webhookHandlers.Receive)

	admin := e.Group("/admin")
	admin.Use(middleware.AdminJWT(cfg.Admin.JWTSecret))
	admin.GET("/jobs", jobHandlers.ListJobs)
	admin.POST("/jobs/morning-nudge/run", jobHandlers.RunMorningNudge)
	admin.POST("/jobs/ghost-sessions/run", jobHandlers.RunGhostSessions)
	admin.POST("/employees", employeeHandlers.CreateEmployee)

	go func() {
		log.Printf("🚀 Pointeuse server v%s starting on port %d", version, cfg.Server.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down")
	if err := scheduler.Stop(); err != nil {
		log.Printf("Failed to stop job scheduler: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
