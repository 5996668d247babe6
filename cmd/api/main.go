package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-backoffice/config"
	httpHandler "marketplace-backoffice/internal/adapter/http/handler"
	pgStorage "marketplace-backoffice/internal/adapter/storage/postgres"
	redisStorage "marketplace-backoffice/internal/adapter/storage/redis"
	"marketplace-backoffice/internal/adapter/ws"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/internal/service"
	"marketplace-backoffice/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Marketplace Back Office")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	productRepo := pgStorage.NewProductRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	kycRepo := pgStorage.NewKYCRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	transitionRepo := pgStorage.NewTransitionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	noticeBus := redisStorage.NewNoticeBus(rdb, cfg.Notifier.Channel, log)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, noticeBus, log)
	productSvc := service.NewProductService(productRepo, transitionRepo, noticeBus, log)
	kycSvc := service.NewKYCService(kycRepo, userRepo, transitionRepo, transactor, noticeBus, log)
	orderSvc := service.NewOrderService(orderRepo, productRepo, transitionRepo, transactor, noticeBus, log)
	userAdminSvc := service.NewUserAdminService(userRepo, hashSvc, transitionRepo, log)
	payoutSvc := service.NewPayoutService(payoutRepo, transitionRepo, noticeBus, log)
	projectionSvc := service.NewProjectionService(userRepo, productRepo, orderRepo, kycRepo, payoutRepo, log)

	// Relay published notices to connected WebSocket clients.
	hub := ws.NewHub(log)
	go noticeBus.Run(ctx, hub)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		ProductSvc:     productSvc,
		KYCSvc:         kycSvc,
		OrderSvc:       orderSvc,
		UserAdminSvc:   userAdminSvc,
		PayoutSvc:      payoutSvc,
		ProjectionSvc:  projectionSvc,
		TransitionRepo: transitionRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		NoticeHub:      hub,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Stop the notice relay before closing client connections.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
