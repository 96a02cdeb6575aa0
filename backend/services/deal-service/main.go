package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/services/common/database"
	"github.com/Arpita030/deals-App/backend/services/common/logger"
	"github.com/Arpita030/deals-App/backend/services/common/middleware"
	"github.com/Arpita030/deals-App/backend/services/deal-service/controllers"
	"github.com/Arpita030/deals-App/backend/services/deal-service/models"
	"github.com/Arpita030/deals-App/backend/services/deal-service/repository"
	"github.com/Arpita030/deals-App/backend/services/deal-service/routes"
	"github.com/Arpita030/deals-App/backend/services/deal-service/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "deal-service"

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
	db, err := database.ConnectPostgres(cfg.DB, log, &models.Deal{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	// --- CloudWatch metrics (non-fatal) ---
	metricsClient, err := awspkg.NewMetricsClient(ctx)
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	// --- Dependency injection ---
	var dealRepo repository.DealRepository = repository.NewGormDealRepository(db)
	if cfg.RedisURL != "" {
		redisClient, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, serving deals without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			dealRepo = repository.NewCachedDealRepository(dealRepo, redisClient, cfg.CacheTTL, metricsClient, log)
			log.Info("Deal cache enabled", zap.Duration("ttl", cfg.CacheTTL))
		}
	}
	dealService := services.NewDealService(dealRepo, log)
	dealController := controllers.NewDealController(dealService)

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Timeout(30 * time.Second))

	routes.RegisterDealRoutes(r, dealController)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})

	// --- Background jobs ---
	jobsCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	go services.NewExpirySweeper(dealService, cfg.SweepInterval, metricsClient, log).Run(jobsCtx)

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Deal service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
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

	log.Info("Deal service stopped gracefully")
}
