package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/tiimbooktu/artmarket-backend/api/routes"
	cartsvc "github.com/tiimbooktu/artmarket-backend/internal/cart"
	"github.com/tiimbooktu/artmarket-backend/internal/catalog"
	"github.com/tiimbooktu/artmarket-backend/internal/orders"
	"github.com/tiimbooktu/artmarket-backend/internal/payments"
	"github.com/tiimbooktu/artmarket-backend/internal/users"
	paystackwebhook "github.com/tiimbooktu/artmarket-backend/internal/webhooks/paystack"
	"github.com/tiimbooktu/artmarket-backend/internal/wishlist"
	"github.com/tiimbooktu/artmarket-backend/pkg/config"
	"github.com/tiimbooktu/artmarket-backend/pkg/db"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/metrics"
	"github.com/tiimbooktu/artmarket-backend/pkg/migrate"
	"github.com/tiimbooktu/artmarket-backend/pkg/paystack"
	"github.com/tiimbooktu/artmarket-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paystackClient, err := paystack.NewClient(cfg.Paystack.SecretKey,
		paystack.WithBaseURL(cfg.Paystack.BaseURL),
		paystack.WithHTTPClient(&http.Client{Timeout: cfg.Paystack.Timeout}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	cartRepo := cartsvc.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	transactionsRepo := payments.NewTransactionRepository(gormDB)
	wishlistRepo := wishlist.NewRepository(gormDB)

	inventory, err := catalog.NewInventory(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, catalogRepo, redisClient, cfg.Cart.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, cartRepo, redisClient, inventory, transactionsRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(paystackClient, ordersRepo, usersRepo, cfg.Paystack, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlistRepo,
		CatalogRepo:  catalogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	webhookService, err := paystackwebhook.NewService(paystackwebhook.ServiceParams{
		Orders:            ordersRepo,
		Transactions:      transactionsRepo,
		Users:             usersRepo,
		Inventory:         inventory,
		TransactionRunner: dbClient,
		Metrics:           webhookMetrics,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	finalizer, err := paystackwebhook.NewFinalizer(webhookService, cfg.Webhook.FinalizerQueueSize, cfg.Webhook.FinalizerTimeout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook finalizer", err)
		os.Exit(1)
	}
	finalizer.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Catalog:        catalogService,
			Cart:           cartService,
			Orders:         ordersService,
			Payments:       paymentsService,
			Wishlist:       wishlistService,
			Finalizer:      finalizer,
			WebhookMetrics: webhookMetrics,
			Gatherer:       registry,
		}),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	// drain queued webhook events before the process exits
	shutdownErr = multierr.Append(shutdownErr, finalizer.Shutdown(shutdownCtx))
	if shutdownErr != nil {
		logg.Error(ctx, "error during shutdown", shutdownErr)
	}
	logg.Info(ctx, "api server stopped")
}
