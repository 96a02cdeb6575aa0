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
	"github.com/Arpita030/deals-App/backend/services/user-service/controllers"
	"github.com/Arpita030/deals-App/backend/services/user-service/models"
	"github.com/Arpita030/deals-App/backend/services/user-service/repository"
	"github.com/Arpita030/deals-App/backend/services/user-service/routes"
	"github.com/Arpita030/deals-App/backend/services/user-service/services"
	"github.com/Arpita030/deals-App/backend/services/user-service/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "user-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	ctx := context.Background()
	if cwLogs, err := awspkg.NewCloudWatchLogsClient(ctx, serviceName); err == nil && cwLogs.IsEnabled() {
		logger.InitializeWithWriter(cfg.Env, cwLogs)
	} else {
		logger.Initialize(cfg.Env)
	}
	log := logger.Log
	defer log.Sync()

	db, err := database.ConnectPostgres(cfg.DB, log, &models.User{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	metricsClient, err := awspkg.NewMetricsClient(ctx)
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	validation.Register()

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo, services.NewTokenService(cfg.TokenTTL), log)
	userController := controllers.NewUserController(userService, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Timeout(30 * time.Second))

	routes.RegisterUserRoutes(r, userController, middleware.RateLimitMiddleware(cfg.AuthRatePerMin, cfg.AuthRateBurst))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("User service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}
	log.Info("User service stopped gracefully")
}
