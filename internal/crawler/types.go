package crawler

import (
	"context"
	"regexp"
	"time"
)

// Recipe represents a scraped recipe
type Recipe struct {
	ID             string            `json:"id,omitempty"`
	Name           string            `json:"name"`
	Ingredients    []string          `json:"ingredients"`
	Steps          []string          `json:"steps"`
	URL            string            `json:"url,omitempty"`
	Type           string            `json:"type,omitempty"`
	Difficulty     string            `json:"difficulty,omitempty"`
	Time           string            `json:"time,omitempty"`
	Image          string            `json:"image,omitempty"`
	ProteinOptions []string          `json:"protein_options,omitempty"`
	Images         map[string]string `json:"images,omitempty"`
	Provider       string            `json:"provider,omitempty"`
}

// Crawler interface defines the contract for all crawler implementations
type Crawler interface {
	// ScrapeRecipe scrapes a single recipe page; target is a URL or a site recipe id
	ScrapeRecipe(ctx context.Context, target string) (*Recipe, error)

	// ExtractRecipeLinks returns recipe page links found on a list or collection page
	ExtractRecipeLinks(ctx context.Context, pageURL string) ([]string, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}

// IDExtractorFunc defines the function signature for extracting an ID from a URL
type IDExtractorFunc func(string) (string, error)

// Selectors contains CSS selectors for various elements in a recipe page
type Selectors struct {
	Name        string
	Ingredients string
	Steps       string
	Image       string
	Links       string
}

// IngredientRule decides whether a text block is an ingredient line.
// Length bounds are exclusive and counted in characters.
type IngredientRule struct {
	Units     []string
	MinLen    int
	MaxLen    int
	MaxSpaces int
}

// StepRule decides whether a text block is a cooking step
type StepRule struct {
	Pattern  *regexp.Regexp
	Keywords []string
	MinLen   int
	MaxSteps int
}

// LinkRule decides which anchors on a list page point at recipes
type LinkRule struct {
	Contains   string
	MinTextLen int
	StripQuery bool
}

// CrawlerConfig contains configuration for a crawler
type CrawlerConfig struct {
	URL                string
	CacheKey           string
	BlockTime          int
	PageCacheTTL       time.Duration
	BaseURL            string
	DetailPath         string
	DetailSuffix       string
	Provider           string
	Selectors          Selectors
	Ingredients        IngredientRule
	Steps              StepRule
	Links              LinkRule
	IDExtractor        IDExtractorFunc
	DefaultName        string
	MinNameLen         int
	RequireIngredients bool
	FallbackSteps      []string
	DetectMetadata     bool
}
