package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported recipe sources
const (
	SourceTrueID = "trueid"
	SourceKapook = "kapook"
)

// Supported store drivers
const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config represents the application configuration
type Config struct {
	// Server configuration
	ServerAddr string

	// Recipe source configuration
	Source         string
	CollectionURL  string
	KapookURL      string
	KapookBaseURL  string
	TrueIDBaseURL  string
	MaxRecipes     int
	ScrapeDelay    time.Duration
	RequestTimeout time.Duration

	// Store configuration
	StoreDriver string
	CacheFile   string
	DatabaseDSN string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStoreKey        string
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int
	PublishEnabled       bool

	// Memcache configuration
	MemcacheAddr string
	PageCacheTTL time.Duration

	// Worker configuration
	RefreshInterval time.Duration
	ErrorLogFile    string

	// Export configuration
	DatasetFile string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	maxRecipes, _ := strconv.Atoi(getEnv("MAX_RECIPES", "20"))
	source := strings.ToLower(getEnv("RECIPE_SOURCE", SourceTrueID))
	scrapeDelay := DefaultScrapeDelay(source)
	if ms, err := strconv.Atoi(os.Getenv("SCRAPE_DELAY_MS")); err == nil {
		scrapeDelay = time.Duration(ms) * time.Millisecond
	}
	requestTimeout, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "15"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	pageCacheTTL, _ := strconv.Atoi(getEnv("PAGE_CACHE_SECONDS", "3600"))
	refreshInterval, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "0"))
	publishEnabled, _ := strconv.ParseBool(getEnv("PUBLISH_ENABLED", "false"))

	return &Config{
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		Source:               source,
		CollectionURL:        getEnv("TRUEID_COLLECTION_URL", "https://food.trueid.net/detail/M6oyloE4klNB"),
		KapookURL:            getEnv("KAPOOK_URL", "https://cooking.kapook.com/"),
		KapookBaseURL:        getEnv("KAPOOK_BASE_URL", "https://cooking.kapook.com"),
		TrueIDBaseURL:        getEnv("TRUEID_BASE_URL", "https://food.trueid.net"),
		MaxRecipes:           maxRecipes,
		ScrapeDelay:          scrapeDelay,
		RequestTimeout:       time.Duration(requestTimeout) * time.Second,
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreFile)),
		CacheFile:            getEnv("RECIPES_CACHE_FILE", "recipes_cache.json"),
		DatabaseDSN:          getEnv("DATABASE_DSN", "recipes.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStoreKey:        getEnv("REDIS_STORE_KEY", "menu:recipes"),
		RedisStream:          getEnv("REDIS_STREAM", "recipes"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLength,
		PublishEnabled:       publishEnabled,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		PageCacheTTL:         time.Duration(pageCacheTTL) * time.Second,
		RefreshInterval:      time.Duration(refreshInterval) * time.Second,
		ErrorLogFile:         getEnv("ERROR_LOG_FILE", "error.log"),
		DatasetFile:          getEnv("DATASET_FILE", "recipes_dataset.csv"),
		Environment:          getEnv("MENU_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the application cannot run with
func (c *Config) Validate() error {
	switch c.Source {
	case SourceTrueID, SourceKapook:
	default:
		return fmt.Errorf("unknown recipe source %q", c.Source)
	}

	switch c.StoreDriver {
	case StoreFile:
		if c.CacheFile == "" {
			return fmt.Errorf("RECIPES_CACHE_FILE is required for the file store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case StoreSQLite, StorePostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s store", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.MaxRecipes < 1 || c.MaxRecipes > 100 {
		return fmt.Errorf("MAX_RECIPES must be between 1 and 100, got %d", c.MaxRecipes)
	}
	if c.ScrapeDelay < 0 {
		return fmt.Errorf("SCRAPE_DELAY_MS must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL_SECONDS must not be negative")
	}
	if c.PublishEnabled && c.RedisStreamCount < 1 {
		return fmt.Errorf("REDIS_STREAM_COUNT must be at least 1 when publishing")
	}

	return nil
}

// DefaultScrapeDelay returns the delay between recipe requests for a source:
// one second for Kapook, half a second for TrueID
func DefaultScrapeDelay(source string) time.Duration {
	if strings.ToLower(source) == SourceKapook {
		return time.Second
	}
	return 500 * time.Millisecond
}

// SourceURL returns the collection or list page scraped for the configured source
func (c *Config) SourceURL() string {
	if c.Source == SourceKapook {
		return c.KapookURL
	}
	return c.CollectionURL
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
