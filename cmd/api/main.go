package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram/internal/auth"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/handler"
	"foodgram/internal/repository"
	"foodgram/internal/router"
	"foodgram/internal/service"
	"foodgram/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting foodgram API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Token revocation lives in Redis when enabled so logouts survive
	// restarts and are shared between replicas.
	var revoked auth.RevocationStore
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer client.Close()
		revoked = auth.NewRedisRevocationStore(client, logger)
	} else {
		logger.Info().Msg("using in-memory token revocation (redis disabled)")
		revoked = auth.NewMemoryRevocationStore()
	}

	images, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize image storage: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	subRepo := repository.NewSubscriptionRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	recipeRepo := repository.NewRecipeRepository(pool, logger)
	favRepo := repository.NewFavoriteRepository(pool, logger)
	cartRepo := repository.NewShoppingCartRepository(pool, logger)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	userService := service.NewUserService(userRepo, subRepo, recipeRepo, images, logger)
	authService := service.NewAuthService(userRepo, tokens, revoked, logger)
	catalogService := service.NewCatalogService(catalogRepo, logger)
	recipeService := service.NewRecipeService(recipeRepo, catalogRepo, userRepo, subRepo, favRepo, cartRepo, images, logger)

	// Initialize HTTP handlers
	pager := handler.Pager{DefaultLimit: cfg.API.PageSize, MaxLimit: cfg.API.MaxPageSize}
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		User:    handler.NewUserHandler(userService, pager, logger),
		Catalog: handler.NewCatalogHandler(catalogService, logger),
		Recipe:  handler.NewRecipeHandler(recipeService, pager, logger),
	}

	opts := router.Options{
		CORSOrigins:     cfg.Server.CORSOrigins,
		LoginRateLimit:  cfg.Auth.LoginRateLimit,
		LoginRateWindow: cfg.Auth.LoginRateWindow,
	}
	if cfg.Storage.Backend == "local" {
		opts.MediaRoot = cfg.Storage.MediaRoot
		opts.MediaPath = cfg.Storage.MediaURL
	}

	// Initialize router
	mux := router.New(handlers, authService, opts, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
