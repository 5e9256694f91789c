package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"reportdesk.app/reportdesk/common/id"
	"reportdesk.app/reportdesk/common/logger"
	"reportdesk.app/reportdesk/common/otel"
	"reportdesk.app/reportdesk/core/config"
	"reportdesk.app/reportdesk/core/db"
	"reportdesk.app/reportdesk/internal/cache"
	"reportdesk.app/reportdesk/internal/chat"
	"reportdesk.app/reportdesk/internal/http/handler"
	"reportdesk.app/reportdesk/internal/http/middleware"
	httprouter "reportdesk.app/reportdesk/internal/http/router"
	"reportdesk.app/reportdesk/internal/queue"
	"reportdesk.app/reportdesk/internal/service"
	"reportdesk.app/reportdesk/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "reportdesk starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Notify.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Notify.Stream)

	notifyProducer := queue.NewRedisProducer(redisClient, cfg.Notify.Stream, slog.Default())

	deliveries, err := cache.NewDeliveries(0)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create delivery cache", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Pool())

	services := service.NewServices(service.ServicesConfig{
		Stores:     stores,
		Chat:       chat.NewRESTClient(cfg.Chat),
		Deliveries: deliveries,
		Notify:     notifyProducer,
		Logger:     slog.Default(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := setupRouter(cfg, services)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) (*gin.Engine, error) {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	verifySignature, err := middleware.VerifyInteractionSignature(cfg.Chat.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("building signature middleware: %w", err)
	}

	interactions := handler.NewInteractionHandler(services.Reports())
	admin := handler.NewAdminHandler(services.Reports(), services.Configs(), cfg.AdminAPIKey)

	httprouter.SetupRoutes(router, interactions, admin, httprouter.RouterConfig{
		InteractionMiddleware: verifySignature,
	})

	return router, nil
}

const banner = `
██████╗ ███████╗██████╗  ██████╗ ██████╗ ████████╗██████╗ ███████╗███████╗██╗  ██╗
██╔══██╗██╔════╝██╔══██╗██╔═══██╗██╔══██╗╚══██╔══╝██╔══██╗██╔════╝██╔════╝██║ ██╔╝
██████╔╝█████╗  ██████╔╝██║   ██║██████╔╝   ██║   ██║  ██║█████╗  ███████╗█████╔╝
██╔══██╗██╔══╝  ██╔═══╝ ██║   ██║██╔══██╗   ██║   ██║  ██║██╔══╝  ╚════██║██╔═██╗
██║  ██║███████╗██║     ╚██████╔╝██║  ██║   ██║   ██████╔╝███████╗███████║██║  ██╗
╚═╝  ╚═╝╚══════╝╚═╝      ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝
`
