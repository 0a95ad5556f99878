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

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/api"
	"github.com/qs3c/zubari_server/internal/api/handler"
	"github.com/qs3c/zubari_server/internal/api/middleware"
	"github.com/qs3c/zubari_server/internal/database"
	"github.com/qs3c/zubari_server/internal/pkg/ai"
	"github.com/qs3c/zubari_server/internal/pkg/cron"
	"github.com/qs3c/zubari_server/internal/pkg/logger"
	"github.com/qs3c/zubari_server/internal/pkg/pubsub"
	"github.com/qs3c/zubari_server/internal/pkg/queue"
	"github.com/qs3c/zubari_server/internal/pkg/revocation"
	"github.com/qs3c/zubari_server/internal/pkg/ws"
	"github.com/qs3c/zubari_server/internal/repository"
	"github.com/qs3c/zubari_server/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	zl.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// Redis carries push events, receipt jobs and logout revocations. Without
	// it the server still gates and settles, but those three are disabled.
	var (
		rdb       *redis.Client
		publisher service.EventPublisher
		receipts  service.ReceiptQueue
		revoker   service.TokenRevoker
		checker   middleware.RevocationChecker
	)
	if cfg.Redis.Host != "" {
		rdb, err = database.NewRedis(&cfg.Redis)
		if err != nil {
			zl.Fatal("failed to connect redis", zap.Error(err))
		}
		zl.Info("redis connected")

		store := revocation.NewStore(rdb)
		publisher = pubsub.NewPublisher(rdb)
		receipts = queue.NewQueue(rdb, cfg.Queue.ReceiptQueue)
		revoker = store
		checker = store
	} else {
		zl.Warn("redis not configured, push events, receipts and logout revocation are disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(zl.Named("ws"))
	if rdb != nil {
		go func() {
			err := pubsub.NewSubscriber(rdb).Subscribe(ctx, hub.Dispatch)
			if err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("account event subscription ended", zap.Error(err))
			}
		}()
	}

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	aiRequestRepo := repository.NewAIRequestRepository(db)

	quotaService := service.NewQuotaService(db, userRepo, aiRequestRepo, publisher, zl.Named("quota"))
	paymentService := service.NewPaymentService(db, userRepo, paymentRepo, publisher, receipts, zl.Named("payment"))
	authService := service.NewAuthService(userRepo, service.NewBcryptHasher(bcrypt.DefaultCost), revoker, &cfg.JWT)
	userService := service.NewUserService(quotaService)
	aiService := service.NewAIService(quotaService, ai.New(cfg.AI), cfg.Quota.FailOpen, zl.Named("ai"))

	sweeper := cron.NewService(userRepo, paymentRepo,
		time.Duration(cfg.Cron.SweepIntervalMinutes)*time.Minute,
		time.Duration(cfg.Payment.PendingTTLHours)*time.Hour,
		zl.Named("cron"))
	sweeper.Start()
	defer sweeper.Stop()

	router := api.NewRouter(api.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		AI:        handler.NewAIHandler(aiService),
		Payment:   handler.NewPaymentHandler(paymentService, cfg.Payment.PublicKey),
		WebSocket: handler.NewWebSocketHandler(hub, cfg.JWT.Secret, checker, cfg.CORS.AllowedOrigins, zl.Named("ws")),
		Health:    handler.NewHealthHandler(db, rdb),
	}, checker, cfg, zl)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		zl.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zl.Info("received shutdown signal")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}
	zl.Info("server stopped")
}
