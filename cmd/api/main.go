package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filedrive/internal/config"
	"filedrive/internal/db"
	apihttp "filedrive/internal/http"
	"filedrive/internal/repository"
	"filedrive/internal/service"
	"filedrive/internal/webhook"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		logger.Info("schema ready")
	}

	verifier, err := webhook.NewVerifier(cfg.WebhookSecret)
	if err != nil {
		logger.Fatal("webhook verifier", zap.Error(err))
	}

	sessionSvc, err := service.NewSessionService(cfg.IdentityProvider, service.SessionOptions{
		PublicKeyPEM: cfg.SessionJWTKey,
		Secret:       cfg.SessionJWTSecret,
		Issuer:       cfg.SessionJWTIssuer,
	})
	if err != nil {
		logger.Fatal("session verifier", zap.Error(err))
	}
	if !sessionSvc.Configured() {
		logger.Warn("session token verification not configured; authenticated requests will be rejected")
	}

	deliveries := service.NewMemoryDeliveryLog()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory delivery log", zap.Error(err))
		} else {
			deliveries = service.NewRedisDeliveryLog(redisClient)
		}
		cancel()
	}

	userRepo := repository.NewPgUserRepository(pool)
	userSvc := service.NewUserService(logger, userRepo)
	webhookSvc := service.NewWebhookService(logger, verifier, userSvc, deliveries, cfg.IdentityProvider)

	router := apihttp.NewRouter(
		logger,
		apihttp.NewWebhookHandler(logger, webhookSvc),
		apihttp.NewUserHandler(logger, userSvc),
		apihttp.NewHealthHandler(pool),
		sessionSvc,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
