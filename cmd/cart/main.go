package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/gomarketplace/internal/cart"
	"github.com/fjod/gomarketplace/internal/config"
	h "github.com/fjod/gomarketplace/internal/http"
	"github.com/fjod/gomarketplace/internal/logger"
	"github.com/fjod/gomarketplace/internal/publisher"
	"github.com/fjod/gomarketplace/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "cart",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx := context.Background()
	kv, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to open cart storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer closeStorage()
	log.Info("cart storage ready", "storage", cfg.Storage)

	if cfg.Breaker {
		kv = storage.NewBreakerStorage(kv, storage.DefaultBreakerSettings("cart-"+cfg.Storage), log)
	}

	opts := []cart.Option{
		cart.WithKey(cfg.CartKey),
		cart.WithLogger(log),
		cart.WithWriteTimeout(cfg.WriteTimeout),
	}
	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewKafkaPublisher(cfg.CartKey, cfg.KafkaTopic, log, cfg.KafkaBrokers...)
		defer pub.Close()
		opts = append(opts, cart.WithObserver(pub.Observe))
		log.Info("publishing cart snapshots", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	store := cart.New(kv, opts...)
	store.Initialize(ctx)

	router := h.NewRouter(store, log, cfg.RequestTimeout)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "cart-http"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("cart service listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down cart service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("last cart write did not finish", "error", err)
	}
	log.Info("cart service stopped")
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.KeyValue, func(), error) {
	switch cfg.Storage {
	case "memory":
		return storage.NewMemoryStorage(), func() {}, nil
	case "sqlite":
		db, err := storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return storage.NewRedisStorage(client), func() { client.Close() }, nil
	case "mongo":
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMongoStorage(db), func() { _ = db.Client().Disconnect(context.Background()) }, nil
	case "postgres":
		pg, err := storage.NewPostgresStorage(&storage.Credentials{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DBName:   cfg.PostgresDB,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := pg.RunMigrations(); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown CART_STORAGE %q", cfg.Storage)
	}
}
