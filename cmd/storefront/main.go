package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/YadneshBamne/HoLo/internal/cart"
	"github.com/YadneshBamne/HoLo/internal/catalog"
	"github.com/YadneshBamne/HoLo/internal/checkout"
	"github.com/YadneshBamne/HoLo/internal/config"
	"github.com/YadneshBamne/HoLo/internal/favorites"
	"github.com/YadneshBamne/HoLo/internal/httpapi"
	"github.com/YadneshBamne/HoLo/internal/notify"
	"github.com/YadneshBamne/HoLo/internal/orders"
	"github.com/YadneshBamne/HoLo/internal/outbox"
	"github.com/YadneshBamne/HoLo/pkg/logger"
	"github.com/YadneshBamne/HoLo/pkg/postgres"
	"github.com/YadneshBamne/HoLo/pkg/shutdown"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Postgres holds the catalog, favorites and orders.
	db, err := postgres.Open(cfg.PostgresDSN())
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// MongoDB keeps the per-session cart documents.
	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoDB.Client().Disconnect(disconnectCtx); err != nil {
			log.Error("failed to disconnect from MongoDB", "error", err)
		}
	}()

	cartStorage := cart.NewMongoStorage(mongoDB)
	if err := cartStorage.CreateIndexes(ctx); err != nil {
		log.Error("failed to create cart indexes", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	carts := cart.NewManager(cartStorage, cart.WithStockGuard(), cart.WithLogger(log))

	catalogSvc := catalog.NewService(
		catalog.NewPostgresRepository(db),
		catalog.NewRedisCache(redisClient),
		log,
	)
	favoritesSvc := favorites.NewService(
		favorites.NewPostgresRepository(db),
		favorites.NewRedisCache(redisClient),
		log,
	)

	ordersRepo := orders.NewPostgresRepository(db)
	checkoutSvc := checkout.NewService(ordersRepo, log)

	// Publishes order events written by checkout in the same transaction.
	poller := outbox.NewPoller(ordersRepo, log, cfg.KafkaBrokers...)
	defer poller.Close()
	go poller.Run(ctx)

	// Catalog rows change out of band, so product cache entries are
	// dropped when a change event for the products table arrives.
	hub := notify.NewHub(log, cfg.KafkaBrokers...)
	defer hub.Close()

	sub := hub.Subscribe("products", func(event notify.Event) {
		catalogSvc.Invalidate(event.ID)
	})
	defer sub.Cancel()
	go hub.Run(ctx)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Products:       httpapi.NewProductHandler(catalogSvc, cfg.RequestTimeout),
		Cart:           httpapi.NewCartHandler(carts, catalogSvc, cfg.RequestTimeout),
		Favorites:      httpapi.NewFavoritesHandler(favoritesSvc, cfg.RequestTimeout),
		Checkout:       httpapi.NewCheckoutHandler(carts, checkoutSvc, ordersRepo, cfg.RequestTimeout),
		SessionCookie:  cfg.SessionCookie,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("http server failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}

	log.Info("storefront stopped")
}
