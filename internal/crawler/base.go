package crawler

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/logger"
	crawlerrors "sjsage522/menufinder/pkg/errors"
	"sjsage522/menufinder/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	URL          string
	CacheKey     string
	CacheSvc     cache.CacheService
	BlockTime    time.Duration
	PageCacheTTL time.Duration
	BaseURL      string
	Provider     string
	IDExtractor  IDExtractorFunc

	// fetch is swapped out in tests
	fetch func(ctx context.Context, url string) (io.Reader, error)
}

type freshPagesKey struct{}

// WithFreshPages marks ctx so recipe pages are fetched from the site even when cached.
// Pages fetched this way still replace the cached copy.
func WithFreshPages(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshPagesKey{}, true)
}

// FreshPages reports whether ctx was marked by WithFreshPages
func FreshPages(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshPagesKey{}).(bool)
	return fresh
}

// fetchWithCache fetches a URL honouring the provider's rate limit block and the page cache
func (c *BaseCrawler) fetchWithCache(ctx context.Context, url string) (io.Reader, error) {
	// Check if the crawler is rate limited
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, crawlerrors.NewRateLimit(c.Provider, c.BlockTime)
		}
	}

	pageKey := c.pageCacheKey(url)
	if pageKey != "" && !FreshPages(ctx) {
		if cached, err := c.CacheSvc.Get(pageKey); err == nil {
			logger.ForCrawler(c.Provider).Debug().Str("url", url).Msg("Page served from cache")
			return bytes.NewReader(cached), nil
		}
	}

	fetch := c.fetch
	if fetch == nil {
		fetch = helpers.FetchWithRandomHeaders
	}

	body, err := fetch(ctx, url)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			if c.CacheSvc != nil && c.CacheKey != "" {
				if setErr := c.CacheSvc.Set(c.CacheKey, []byte(fmt.Sprintf("%d", c.BlockTime/time.Second)), c.BlockTime); setErr != nil {
					logger.ForCrawler(c.Provider).Warn().Err(crawlerrors.NewCache(c.Provider, "rate limit block", setErr)).Msg("Failed to set rate limit block")
				}
			}
			return nil, crawlerrors.New(crawlerrors.ErrorTypeRateLimit, c.Provider, "site rate limited the crawler", err)
		}
		return nil, crawlerrors.NewNetwork(c.Provider, "failed to fetch "+url, err)
	}

	if pageKey == "" {
		return body, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, crawlerrors.NewNetwork(c.Provider, "failed to read "+url, err)
	}
	if err := c.CacheSvc.Set(pageKey, data, c.PageCacheTTL); err != nil {
		logger.ForCrawler(c.Provider).Debug().Err(crawlerrors.NewCache(c.Provider, "page cache", err)).Str("url", url).Msg("Failed to cache page")
	}
	return bytes.NewReader(data), nil
}

// pageCacheKey returns the cache key for a page, or "" when page caching is off.
// Memcache keys are limited to 250 bytes so the URL is hashed.
func (c *BaseCrawler) pageCacheKey(url string) string {
	if c.CacheSvc == nil || c.PageCacheTTL <= 0 {
		return ""
	}
	sum := sha1.Sum([]byte(url))
	return "page:" + strings.ToLower(c.Provider) + ":" + hex.EncodeToString(sum[:])
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, crawlerrors.NewParsing(c.Provider, "HTML parsing failed", err)
	}
	return doc, nil
}

// ResolveURL turns a relative or protocol-relative href into an absolute URL
func (c *BaseCrawler) ResolveURL(href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(c.BaseURL, "/") + href
	default:
		return strings.TrimSuffix(c.BaseURL, "/") + "/" + href
	}
}

// GetProvider returns the provider name
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}

// GetName returns the crawler's name for logging
func (c *BaseCrawler) GetName() string {
	return c.Provider + "Crawler"
}
