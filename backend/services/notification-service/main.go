package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/common/consumer"
	"github.com/Arpita030/deals-App/backend/services/common/database"
	"github.com/Arpita030/deals-App/backend/services/common/logger"
	"github.com/Arpita030/deals-App/backend/services/common/middleware"
	notificationconsumer "github.com/Arpita030/deals-App/backend/services/notification-service/consumer"
	"github.com/Arpita030/deals-App/backend/services/notification-service/controllers"
	"github.com/Arpita030/deals-App/backend/services/notification-service/models"
	"github.com/Arpita030/deals-App/backend/services/notification-service/repository"
	"github.com/Arpita030/deals-App/backend/services/notification-service/routes"
	"github.com/Arpita030/deals-App/backend/services/notification-service/sender"
	"github.com/Arpita030/deals-App/backend/services/notification-service/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "notification-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	ctx := context.Background()
	cwLogs, err := awspkg.NewCloudWatchLogsClient(ctx, serviceName)
	if err != nil || !cwLogs.IsEnabled() {
		logger.Initialize(cfg.Env)
	} else {
		logger.InitializeWithWriter(cfg.Env, cwLogs)
	}
	log := logger.Log
	defer log.Sync()

	// Database
	db, err := database.ConnectPostgres(cfg.DB, log, &models.NotificationLog{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	// CloudWatch (non-fatal)
	metricsClient, err := awspkg.NewMetricsClient(ctx)
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatal("AWS config failed", zap.Error(err))
	}

	// Sender
	var emailSender sender.EmailSender
	if cfg.SMTP.Host == "" {
		log.Warn("SMTP_HOST not set, emails will only be logged")
		emailSender = sender.NewLogSender(log)
	} else {
		smtpSender, err := sender.NewSMTPSender(cfg.SMTP)
		if err != nil {
			log.Fatal("Failed to init SMTP sender", zap.Error(err))
		}
		emailSender = smtpSender
	}

	// Dependency injection
	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := services.NewNotificationService(notificationRepo, emailSender, metricsClient, log, services.Options{
		Attempts: cfg.SendAttempts,
		Backoff:  cfg.SendBackoff,
	})
	notificationController := controllers.NewNotificationController(notificationService, log)
	notificationConsumer := notificationconsumer.NewNotificationConsumer(notificationService, log)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Timeout(30 * time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName, "broker": cfg.MessageBroker})
	})
	routes.RegisterRoutes(r, notificationController)

	// Consumer
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()
	go func() {
		err := consumer.Run(consumerCtx, awsCfg, consumer.Config{
			Broker:       cfg.MessageBroker,
			Queue:        events.NotificationQueue,
			QueueURL:     cfg.QueueURL,
			KafkaBrokers: cfg.KafkaBrokers,
			GroupID:      cfg.ConsumerGroup,
			MaxAttempts:  cfg.MaxReceiveCount,
			Metrics:      metricsClient,
		}, notificationConsumer.Handle, log)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("notification consumer exited", zap.Error(err))
		}
	}()

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Notification service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := database.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Notification service stopped gracefully")
}
