package store

import (
	"context"
	"errors"
	"fmt"

	"sjsage522/menufinder/config"
	"sjsage522/menufinder/internal/crawler"
)

// ErrNotFound is returned by Load when no recipes have been stored yet
var ErrNotFound = errors.New("no stored recipes")

// RecipeStore persists the scraped recipe collection as a whole
type RecipeStore interface {
	// Load returns the stored recipes in their original order
	Load(ctx context.Context) ([]crawler.Recipe, error)

	// Save replaces the stored recipes
	Save(ctx context.Context, recipes []crawler.Recipe) error

	// Clear removes every stored recipe
	Clear(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}

// New creates the recipe store selected by cfg.StoreDriver
func New(cfg *config.Config) (RecipeStore, error) {
	switch cfg.StoreDriver {
	case config.StoreFile:
		return NewFileStore(cfg.CacheFile), nil
	case config.StoreRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStoreKey)
	case config.StoreSQLite, config.StorePostgres:
		return NewGormStore(cfg.StoreDriver, cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
