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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/nooktextiles/nook/internal"
	"github.com/nooktextiles/nook/internal/email"
	"github.com/nooktextiles/nook/internal/fiscal"
	"github.com/nooktextiles/nook/internal/handler"
	"github.com/nooktextiles/nook/internal/middleware"
	"github.com/nooktextiles/nook/internal/payment"
	"github.com/nooktextiles/nook/internal/remote"
	"github.com/nooktextiles/nook/internal/router"
	"github.com/nooktextiles/nook/internal/service"
	"github.com/nooktextiles/nook/internal/storage"
	"github.com/nooktextiles/nook/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Fallback store: carts, mock users and locally persisted orders.
	var store storage.Store
	switch cfg.StorageProvider {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		defer client.Close()
		store = storage.NewRedisStore(client)
		logger.Info("Using Redis store", "addr", cfg.RedisAddr)
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()
		store, err = storage.NewPostgresStore(ctx, pool)
		if err != nil {
			return fmt.Errorf("postgres store initialization failed: %w", err)
		}
		logger.Info("Using Postgres store")
	default:
		store = storage.NewMemoryStore()
		logger.Info("Using in-memory store")
	}

	// Optional storefront backend. When absent every collaborator runs
	// its local path.
	var backend *remote.Client
	if cfg.BackendURL != "" {
		backend = remote.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger)
		logger.Info("Backend configured", "url", cfg.BackendURL)
	} else {
		logger.Warn("No backend configured, running in local mode")
	}

	var primaryPayments payment.Provider
	switch cfg.PaymentProvider {
	case "stripe":
		stripeConfig := payment.StripeConfig{
			SecretKey:      cfg.Stripe.SecretKey,
			PublishableKey: cfg.Stripe.PublishableKey,
			MaxRetries:     cfg.Stripe.MaxRetries,
		}
		stripeProvider, err := payment.NewStripeProvider(stripeConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe provider: %w", err)
		}
		primaryPayments = stripeProvider
		logger.Info("Stripe payment provider initialized", "test_mode", stripeConfig.IsTestMode())
	case "remote":
		primaryPayments = payment.NewRemoteProvider(backend)
		logger.Info("Remote payment provider initialized")
	default:
		logger.Info("Mock payment provider initialized")
	}
	payments := payment.NewFallbackProvider(primaryPayments, logger)

	fiscalService := fiscal.NewService(backend, fiscal.NewGenerator(), logger)
	cartService := service.NewCartService(store, logger)
	orderService := service.NewOrderService(backend, store, logger)
	userService := service.NewUserService(backend, store, logger)

	var emailSender email.Sender
	if backend != nil {
		emailSender = email.NewRemoteSender(backend)
	}
	emailService := email.NewService(emailSender, cfg.Email.From, cfg.Email.FromName, logger)

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	checkoutService := service.NewCheckoutService(service.CheckoutConfig{
		Cart:        cartService,
		Payments:    payments,
		Fiscal:      fiscalService,
		Orders:      orderService,
		Emails:      emailService,
		Metrics:     metrics,
		ShippingFee: cfg.ShippingFee,
		Logger:      logger,
	})

	r := router.New(
		middleware.Recovery(logger),
		middleware.RequestID,
		httpMetrics.Middleware,
		middleware.Logger(logger),
	)

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		httpMetrics.Handler().ServeHTTP(w, req)
	})

	api := handler.NewAPI(cartService, checkoutService, orderService, userService, logger)
	api.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	// Let in-flight confirmation emails finish.
	checkoutService.Wait()
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
