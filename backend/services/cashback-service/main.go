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
	"github.com/Arpita030/deals-App/backend/pkg/kafka"
	cashbackconsumer "github.com/Arpita030/deals-App/backend/services/cashback-service/consumer"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/controllers"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/models"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/repository"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/routes"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/services"
	"github.com/Arpita030/deals-App/backend/services/common/consumer"
	"github.com/Arpita030/deals-App/backend/services/common/database"
	"github.com/Arpita030/deals-App/backend/services/common/logger"
	"github.com/Arpita030/deals-App/backend/services/common/middleware"
	"github.com/Arpita030/deals-App/backend/services/common/outbox"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "cashback-service"

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

	// --- Database ---
	db, err := database.ConnectPostgres(cfg.DB, log,
		&models.Cashback{}, &models.CashbackSummary{}, &models.ProcessedEvent{}, &outbox.Message{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	metricsClient, err := awspkg.NewMetricsClient(ctx)
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatal("AWS config failed", zap.Error(err))
	}

	// --- Outbox relay ---
	router := outbox.Router{Topics: awspkg.NewSNSClient(awsCfg)}
	if cfg.MessageBroker == consumer.BrokerKafka {
		producer := kafka.NewProducer(cfg.KafkaBrokers, log)
		defer producer.Close()
		router.Queues = producer
	} else {
		router.Queues = awspkg.NewSQSPublisher(awsCfg)
	}
	relay := outbox.NewRelay(db, router, metricsClient, log, outbox.RelayConfig{
		Interval:    cfg.OutboxInterval,
		BatchSize:   cfg.OutboxBatchSize,
		MaxAttempts: cfg.OutboxMaxAttempt,
	})

	// --- Dependency injection ---
	cashbackService := services.NewCashbackService(repository.NewGormCashbackRepo(db), events.NotificationQueue, metricsClient, log)
	cashbackController := controllers.NewCashbackController(cashbackService)
	cashbackConsumer := cashbackconsumer.NewCashbackConsumer(cashbackService, log)

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Timeout(30 * time.Second))

	routes.RegisterCashbackRoutes(r, cashbackController)
	r.GET("/health", func(c *gin.Context) {
		pending, err := outbox.CountByStatus(c.Request.Context(), db, outbox.StatusPending)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "service": serviceName, "error": err.Error()})
			return
		}
		failed, _ := outbox.CountByStatus(c.Request.Context(), db, outbox.StatusFailed)
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": serviceName,
			"broker":  cfg.MessageBroker,
			"outbox":  gin.H{"pending": pending, "failed": failed},
		})
	})

	// --- Background jobs ---
	jobsCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	go relay.Run(jobsCtx)
	go func() {
		err := consumer.Run(jobsCtx, awsCfg, consumer.Config{
			Broker:       cfg.MessageBroker,
			Queue:        events.CashbackQueue,
			QueueURL:     cfg.CashbackQueueURL,
			KafkaBrokers: cfg.KafkaBrokers,
			GroupID:      cfg.ConsumerGroup,
			MaxAttempts:  cfg.MaxReceiveCount,
			Metrics:      metricsClient,
		}, cashbackConsumer.Handle, log)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("cashback consumer exited", zap.Error(err))
		}
	}()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Cashback service started", zap.String("port", cfg.Port), zap.String("broker", cfg.MessageBroker))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	stopJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Cashback service stopped gracefully")
}
