package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"sjsage522/menufinder/config"
	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/services/cache"
)

var kapookViewID = regexp.MustCompile(`view(\d+)\.html`)

// KapookConfig returns the crawler configuration for cooking.kapook.com
func KapookConfig(listURL, baseURL string, pageCacheTTL time.Duration) CrawlerConfig {
	return CrawlerConfig{
		URL:          listURL,
		CacheKey:     "kapook_rate_limited",
		BlockTime:    500,
		PageCacheTTL: pageCacheTTL,
		BaseURL:      baseURL,
		DetailPath:   "/view",
		DetailSuffix: ".html",
		Provider:     "Kapook",
		Selectors: Selectors{
			Name:        "h1",
			Ingredients: "li",
			Steps:       "p",
			Image:       "meta[property='og:image']",
			Links:       "a[href]",
		},
		Ingredients: IngredientRule{
			Units:  KapookUnits,
			MinLen: 2,
			MaxLen: 200,
		},
		Steps: StepRule{
			Pattern:  regexp.MustCompile(`^[1-9]`),
			Keywords: []string{"ขั้นตอน"},
		},
		Links: LinkRule{
			Contains: hostOf(baseURL) + "/view",
		},
		IDExtractor: func(link string) (string, error) {
			match := kapookViewID.FindStringSubmatch(link)
			if match == nil {
				return "", fmt.Errorf("no kapook view id in %s", link)
			}
			return "kapook-" + match[1], nil
		},
		DefaultName: defaultRecipeName,
	}
}

// TrueIDConfig returns the crawler configuration for food.trueid.net
func TrueIDConfig(collectionURL, baseURL string, pageCacheTTL time.Duration) CrawlerConfig {
	return CrawlerConfig{
		URL:          collectionURL,
		CacheKey:     "trueid_rate_limited",
		BlockTime:    500,
		PageCacheTTL: pageCacheTTL,
		BaseURL:      baseURL,
		DetailPath:   "/detail/",
		Provider:     "TrueID",
		Selectors: Selectors{
			Name:        "h1",
			Ingredients: "li",
			Steps:       "p, li, div",
			Image:       "meta[property='og:image']",
			Links:       "a[href]",
		},
		Ingredients: IngredientRule{
			Units:     TrueIDUnits,
			MinLen:    5,
			MaxLen:    300,
			MaxSpaces: 20,
		},
		Steps: StepRule{
			Pattern:  regexp.MustCompile(`^\p{Nd}+\.\s+`),
			MinLen:   10,
			MaxSteps: 20,
		},
		Links: LinkRule{
			Contains:   hostOf(baseURL) + "/detail/",
			MinTextLen: 3,
			StripQuery: true,
		},
		IDExtractor: func(link string) (string, error) {
			id, err := helpers.GetSplitPart(helpers.StripQuery(link), "/detail/", 1)
			if err != nil || id == "" {
				return "", fmt.Errorf("no trueid detail id in %s", link)
			}
			return "trueid-" + strings.Trim(id, "/"), nil
		},
		MinNameLen:         2,
		RequireIngredients: true,
		FallbackSteps:      []string{stepsOnWebsite},
		DetectMetadata:     true,
	}
}

// NewKapookCrawler creates the Kapook crawler from the application configuration
func NewKapookCrawler(cfg *config.Config, cacheSvc cache.CacheService) *ConfigurableCrawler {
	return NewConfigurableCrawler(KapookConfig(cfg.KapookURL, cfg.KapookBaseURL, cfg.PageCacheTTL), cacheSvc)
}

// NewTrueIDCrawler creates the TrueID crawler from the application configuration
func NewTrueIDCrawler(cfg *config.Config, cacheSvc cache.CacheService) *ConfigurableCrawler {
	return NewConfigurableCrawler(TrueIDConfig(cfg.CollectionURL, cfg.TrueIDBaseURL, cfg.PageCacheTTL), cacheSvc)
}

// CreateCrawler creates the crawler for the configured recipe source
func CreateCrawler(cfg *config.Config, cacheSvc cache.CacheService) (*ConfigurableCrawler, error) {
	return CreateCrawlerFor(cfg.Source, cfg, cacheSvc)
}

// CreateCrawlerFor creates the crawler for the named source
func CreateCrawlerFor(source string, cfg *config.Config, cacheSvc cache.CacheService) (*ConfigurableCrawler, error) {
	switch strings.ToLower(source) {
	case config.SourceKapook:
		return NewKapookCrawler(cfg, cacheSvc), nil
	case config.SourceTrueID:
		return NewTrueIDCrawler(cfg, cacheSvc), nil
	default:
		return nil, fmt.Errorf("unknown recipe source %q", source)
	}
}

// DefaultDelay returns the delay between recipe requests for a source
func DefaultDelay(source string) time.Duration {
	return config.DefaultScrapeDelay(source)
}

// hostOf returns the host (with port) of a base URL, or the input when it does not parse
func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(baseURL, "/")
	}
	return u.Host
}
