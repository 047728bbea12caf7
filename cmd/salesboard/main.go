package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/ariefcatur/go-juice-pos/internal/config"
	kafkax "github.com/ariefcatur/go-juice-pos/internal/kafka"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/redisx"
	"github.com/ariefcatur/go-juice-pos/internal/salesboard"
)

const defaultGroup = "salesboard"

// salesboard keeps the live dashboard counters in Redis from order events.
func main() {
	if err := run(); err != nil {
		slog.Error("salesboard exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()

	name := cfg.ServiceName + "-salesboard"
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", name)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redisx.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer rdb.Close()

	board := &salesboard.Board{Redis: rdb, Location: loc, ServiceName: name, Log: log}

	group := cfg.ConsumerGroup
	if group == "" {
		group = defaultGroup
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.Topics(), cfg.ConsumerWorkers, log)

	log.Info("consumer started", "group", group, "topics", orders.Topics(), "workers", cfg.ConsumerWorkers)
	return cons.Start(ctx, board.HandleMessage)
}
