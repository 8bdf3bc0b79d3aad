package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/logger"
	crawlerrors "sjsage522/menufinder/pkg/errors"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

const linkRequestTimeout = 15 * time.Second

// newCollector returns a colly collector with browser-like request headers
func newCollector(ctx context.Context) *colly.Collector {
	collector := colly.NewCollector(colly.StdlibContext(ctx))
	collector.SetRequestTimeout(linkRequestTimeout)

	extensions.RandomUserAgent(collector)
	extensions.Referer(collector)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "th-TH,th;q=0.9,en-US;q=0.8,en;q=0.7")
	})

	return collector
}

// ExtractRecipeLinks collects unique recipe links from a list or collection page in page order
func (c *ConfigurableCrawler) ExtractRecipeLinks(ctx context.Context, pageURL string) ([]string, error) {
	log := logger.ForCrawler(c.Provider)

	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return nil, crawlerrors.NewRateLimit(c.Provider, c.BlockTime)
		}
	}

	rule := c.config.Links
	selector := c.config.Selectors.Links
	if selector == "" {
		selector = "a[href]"
	}

	var links []string
	seen := make(map[string]struct{})

	collector := newCollector(ctx)
	collector.OnHTML(selector, func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return
		}
		link := c.ResolveURL(href)
		if rule.Contains != "" && !strings.Contains(link, rule.Contains) {
			return
		}
		if rule.MinTextLen > 0 && helpers.RuneLen(helpers.NormalizeSpace(e.Text)) <= rule.MinTextLen {
			return
		}
		if rule.StripQuery {
			link = helpers.StripQuery(link)
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	rateLimited := false
	collector.OnError(func(r *colly.Response, err error) {
		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode == 430 {
			rateLimited = true
			if c.CacheSvc != nil && c.CacheKey != "" {
				if setErr := c.CacheSvc.Set(c.CacheKey, []byte(fmt.Sprintf("%d", c.BlockTime/time.Second)), c.BlockTime); setErr != nil {
					log.Warn().Err(setErr).Msg("Failed to set rate limit block")
				}
			}
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		if rateLimited {
			return nil, crawlerrors.NewRateLimit(c.Provider, c.BlockTime)
		}
		return nil, crawlerrors.NewNetwork(c.Provider, "failed to extract recipe links from "+pageURL, err)
	}
	collector.Wait()

	log.Info().Str("page", pageURL).Int("links", len(links)).Msg("Found recipe links")
	return links, nil
}
