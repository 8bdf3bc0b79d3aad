package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/menufinder/config"
	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/internal/catalog"
	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/internal/server"
	"sjsage522/menufinder/logger"
	"sjsage522/menufinder/services/cache"
	"sjsage522/menufinder/services/publisher"
	"sjsage522/menufinder/services/store"
	"sjsage522/menufinder/services/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	helpers.SetRequestTimeout(cfg.RequestTimeout)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("source", cfg.Source).
		Str("store", cfg.StoreDriver).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Starting application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	recipeCrawler, err := crawler.CreateCrawler(cfg, services.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create crawler")
	}

	recipes := catalog.New(recipeCrawler, services.Store, catalog.Options{
		CollectionURL: cfg.SourceURL(),
		MaxRecipes:    cfg.MaxRecipes,
		Delay:         cfg.ScrapeDelay,
	})
	if loaded, err := recipes.LoadOrScrape(ctx); err != nil {
		log.Error().Err(err).Msg("No recipes available yet; use reload to scrape again")
	} else {
		log.Info().Int("recipes", len(loaded)).Msg("Recipe catalog ready")
	}

	workerDone := make(chan error, 1)
	if cfg.RefreshInterval > 0 {
		w := worker.NewWorker(
			recipes,
			services.Publisher,
			helpers.NewLogger(cfg.ErrorLogFile),
			cfg.RefreshInterval,
		)
		go func() {
			log.Info().Msg("Starting recipe refresh worker")
			workerDone <- w.Start(ctx)
		}()
	}

	srv := server.New(recipes, server.Options{
		CollectionURL: cfg.SourceURL(),
		MaxRecipes:    cfg.MaxRecipes,
	})
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(cfg.ServerAddr)
	}()

	// Wait for shutdown signal, server exit or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil {
			log.Error().Err(err).Msg("Server exited with error")
		}
	case err := <-workerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Worker exited with error")
		}
	}
	cancel()

	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     store.RecipeStore
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	services.Cache = cache.New(cfg.MemcacheAddr)
	if cfg.MemcacheAddr != "" {
		logger.Info("Using Memcache at %s", cfg.MemcacheAddr)
	} else {
		logger.Info("MEMCACHE_ADDR not set, using in-process cache")
	}

	recipeStore, err := store.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s store: %w", cfg.StoreDriver, err)
	}
	services.Store = recipeStore

	if !cfg.PublishEnabled {
		services.Publisher = publisher.NoopPublisher{}
		return services, nil
	}

	redisPublisher, err := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if err != nil {
		services.Cleanup()
		return nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services, nil
}
