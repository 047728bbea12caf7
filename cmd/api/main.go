package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/ariefcatur/go-juice-pos/internal/auth"
	"github.com/ariefcatur/go-juice-pos/internal/cart"
	"github.com/ariefcatur/go-juice-pos/internal/catalog"
	"github.com/ariefcatur/go-juice-pos/internal/config"
	"github.com/ariefcatur/go-juice-pos/internal/httpx"
	kafkax "github.com/ariefcatur/go-juice-pos/internal/kafka"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/postgres"
	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/ariefcatur/go-juice-pos/internal/realtime"
	"github.com/ariefcatur/go-juice-pos/internal/redisx"
	"github.com/ariefcatur/go-juice-pos/internal/salesboard"
	"github.com/ariefcatur/go-juice-pos/internal/settings"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()

	host, _ := os.Hostname()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", cfg.ServiceName, "host", host)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	users := &profiles.Repo{DB: db}
	if cfg.OwnerPassword != "" {
		owner := profiles.NewProfile{
			Username: cfg.OwnerUsername,
			Password: cfg.OwnerPassword,
			Name:     "Owner",
			Role:     profiles.RoleOwner,
		}
		if err := users.EnsureOwner(ctx, owner, log); err != nil {
			return err
		}
	}

	// Redis
	rdb, err := redisx.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start()

	repo := &orders.Repo{DB: db}
	svc := &orders.Service{
		Store:        repo,
		Events:       prod,
		Location:     loc,
		MaxRetries:   cfg.OrderIDMaxRetries,
		StoreTimeout: cfg.StoreTimeout,
		ServiceName:  cfg.ServiceName,
		Logger:       log,
	}

	// Every replica reads every event so each can push to its own screens.
	hub := realtime.NewHub(64, log)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName+"-events-"+host, orders.Topics(), 1, log)

	api := &httpx.API{
		Auth: &auth.Service{
			Users:    users,
			Sessions: &auth.RedisSessions{Redis: rdb},
			Secret:   []byte(cfg.JWTSecret),
			TTL:      cfg.SessionTTL,
			Issuer:   cfg.ServiceName,
		},
		Profiles: users,
		Catalog:  &catalog.Repo{DB: db},
		Orders:   svc,
		History:  repo,
		Carts:    &cart.Store{Redis: rdb, TTL: cfg.CartTTL},
		Settings: &settings.Repo{DB: db},
		Board:    &salesboard.Board{Redis: rdb, Location: loc, ServiceName: cfg.ServiceName, Log: log},
		Hub:      hub,
		Location: loc,
		Timeout:  cfg.StoreTimeout,
		Log:      log,
	}
	router := httpx.NewRouter()
	api.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cons.Start(gctx, hub.HandleMessage)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		// end open event streams first so Shutdown does not wait on them
		hub.Close()

		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)

		prod.Close()
		prod.WaitClosed()
		return err
	})

	return g.Wait()
}
