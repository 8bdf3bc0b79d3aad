package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/logger"
	crawlerrors "sjsage522/menufinder/pkg/errors"
	"sjsage522/menufinder/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// ConfigurableCrawler is a crawler that can be configured with selectors and text rules
type ConfigurableCrawler struct {
	BaseCrawler
	config CrawlerConfig
}

// NewConfigurableCrawler creates a new configurable crawler
func NewConfigurableCrawler(config CrawlerConfig, cacheSvc cache.CacheService) *ConfigurableCrawler {
	return &ConfigurableCrawler{
		BaseCrawler: BaseCrawler{
			URL:          config.URL,
			CacheKey:     config.CacheKey,
			CacheSvc:     cacheSvc,
			BlockTime:    time.Duration(config.BlockTime) * time.Second,
			PageCacheTTL: config.PageCacheTTL,
			BaseURL:      config.BaseURL,
			Provider:     config.Provider,
			IDExtractor:  config.IDExtractor,
		},
		config: config,
	}
}

// RecipeURL expands a bare recipe id into a detail page URL
func (c *ConfigurableCrawler) RecipeURL(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	id := strings.TrimPrefix(target, "/")
	id = strings.TrimPrefix(id, strings.ToLower(c.Provider)+"-")
	return strings.TrimSuffix(c.BaseURL, "/") + c.config.DetailPath + id + c.config.DetailSuffix
}

// ScrapeRecipe fetches a recipe page and extracts a Recipe from it
func (c *ConfigurableCrawler) ScrapeRecipe(ctx context.Context, target string) (*Recipe, error) {
	recipeURL := c.RecipeURL(target)
	logger.ForCrawler(c.Provider).Debug().Str("url", recipeURL).Msg("Scraping recipe")

	body, err := c.fetchWithCache(ctx, recipeURL)
	if err != nil {
		return nil, err
	}

	doc, err := c.createDocument(body)
	if err != nil {
		return nil, err
	}

	return c.ParseRecipe(doc, recipeURL)
}

// ParseRecipe extracts a Recipe from an already parsed page
func (c *ConfigurableCrawler) ParseRecipe(doc *goquery.Document, recipeURL string) (*Recipe, error) {
	name := c.extractName(doc)
	if name == "" {
		return nil, crawlerrors.NewValidation(c.Provider, "recipe name not found at "+recipeURL)
	}

	ingredients := c.config.Ingredients.Collect(blockTexts(doc, c.config.Selectors.Ingredients))
	if c.config.RequireIngredients && len(ingredients) == 0 {
		return nil, crawlerrors.NewValidation(c.Provider, fmt.Sprintf("no ingredients found for %q", name))
	}

	steps := c.config.Steps.Collect(blockTexts(doc, c.config.Selectors.Steps))
	if len(steps) == 0 && len(c.config.FallbackSteps) > 0 {
		steps = append([]string{}, c.config.FallbackSteps...)
	}

	recipe := &Recipe{
		Name:        name,
		Ingredients: ingredients,
		Steps:       steps,
		URL:         recipeURL,
		Image:       c.extractImage(doc),
		Provider:    c.Provider,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Steps == nil {
		recipe.Steps = []string{}
	}

	if c.IDExtractor != nil {
		if id, err := c.IDExtractor(recipeURL); err == nil {
			recipe.ID = id
		}
	}

	if c.config.DetectMetadata {
		pageText := doc.Text()
		recipe.Difficulty = DetectDifficulty(pageText)
		recipe.Time = DetectTime(pageText)
	}

	return recipe, nil
}

// extractName returns the first heading, falling back to the configured default
func (c *ConfigurableCrawler) extractName(doc *goquery.Document) string {
	name := helpers.NormalizeSpace(doc.Find(c.config.Selectors.Name).First().Text())
	if helpers.RuneLen(name) > c.config.MinNameLen {
		return name
	}
	return c.config.DefaultName
}

// extractImage reads the image reference from a meta tag or an img element
func (c *ConfigurableCrawler) extractImage(doc *goquery.Document) string {
	if c.config.Selectors.Image == "" {
		return ""
	}
	sel := doc.Find(c.config.Selectors.Image).First()
	for _, attr := range []string{"content", "src", "data-src"} {
		if value, ok := sel.Attr(attr); ok && strings.TrimSpace(value) != "" {
			return c.ResolveURL(strings.TrimSpace(value))
		}
	}
	return ""
}

// blockTexts returns the whitespace-normalized text of every element matching selector
func blockTexts(doc *goquery.Document, selector string) []string {
	if selector == "" {
		return nil
	}
	var texts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := helpers.NormalizeSpace(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}
