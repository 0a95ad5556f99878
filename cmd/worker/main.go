package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/database"
	"github.com/qs3c/zubari_server/internal/pkg/email"
	"github.com/qs3c/zubari_server/internal/pkg/logger"
	"github.com/qs3c/zubari_server/internal/pkg/queue"
	"github.com/qs3c/zubari_server/internal/worker"
)

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

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()
	zl.Info("redis connected")

	receipts := queue.NewQueue(rdb, cfg.Queue.ReceiptQueue)
	processor := worker.NewProcessor(email.NewService(&cfg.Email), receipts, worker.DefaultMaxAttempts, zl)
	pool := worker.NewPool(receipts, processor, cfg.Queue.MaxWorkers, zl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		zl.Info("received shutdown signal")
		cancel()
	}()

	zl.Info("worker started",
		zap.String("queue", cfg.Queue.ReceiptQueue),
		zap.Int("max_workers", cfg.Queue.MaxWorkers))
	pool.Run(ctx)
	zl.Info("worker shutdown complete")
}
