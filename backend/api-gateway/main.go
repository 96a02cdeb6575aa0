package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arpita030/deals-App/backend/api-gateway/proxy"
	"github.com/Arpita030/deals-App/backend/api-gateway/routes"
	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/services/common/logger"
	"github.com/Arpita030/deals-App/backend/services/common/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "api-gateway"

func main() {
	cfg := LoadConfig()

	ctx := context.Background()
	if cwLogs, err := awspkg.NewCloudWatchLogsClient(ctx, serviceName); err == nil && cwLogs.IsEnabled() {
		logger.InitializeWithWriter(cfg.Env, cwLogs)
	} else {
		logger.Initialize(cfg.Env)
	}
	log := logger.Log
	defer log.Sync()

	log.Info("Starting API Gateway...")

	metricsClient, err := awspkg.NewMetricsClient(ctx)
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SecurityHeaders())

	routes.RegisterAllRoutes(r, routes.Targets{
		User:         proxy.NewForwarder(cfg.Upstreams.User, cfg.UpstreamTimeout),
		Deal:         proxy.NewForwarder(cfg.Upstreams.Deal, cfg.UpstreamTimeout),
		Payment:      proxy.NewForwarder(cfg.Upstreams.Payment, cfg.UpstreamTimeout),
		Cashback:     proxy.NewForwarder(cfg.Upstreams.Cashback, cfg.UpstreamTimeout),
		Notification: proxy.NewForwarder(cfg.Upstreams.Notification, cfg.UpstreamTimeout),
	}, middleware.RateLimitMiddleware(cfg.RatePerMinute, cfg.RateBurst))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("API Gateway listening on port", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	log.Info("API Gateway stopped")
}
