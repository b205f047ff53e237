package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/config"
	kafkax "github.com/Nirmit210/pulsepixeltech-sub001/internal/kafka"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/logging"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/redisx"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/statuscache"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName + "-worker")
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &statuscache.Service{Redis: rdb, Log: log}

	group := getenv("WORKER_GROUP", "status-cache")
	workers := mustAtoi(os.Getenv("WORKER_COUNT"), "8")

	// one consumer per topic feeding the same handler
	cPlaced := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderPlaced, workers)
	cStatus := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderStatusChanged, workers)

	go func() {
		log.Info("consumer started",
			zap.String("group", group),
			zap.String("topic", orders.TopicOrderPlaced),
			zap.Int("workers", workers))
		if err := cPlaced.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()
	go func() {
		log.Info("consumer started",
			zap.String("group", group),
			zap.String("topic", orders.TopicOrderStatusChanged),
			zap.Int("workers", workers))
		if err := cStatus.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumers")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
