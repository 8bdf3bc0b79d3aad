package crawler

import (
	"context"
	"time"

	"sjsage522/menufinder/logger"
)

// ScrapeCollection scrapes up to max recipes linked from a collection page.
// Recipes that fail to scrape or have no ingredients are skipped; delay is
// waited between recipe requests.
func ScrapeCollection(ctx context.Context, c Crawler, collectionURL string, max int, delay time.Duration) ([]Recipe, error) {
	log := logger.ForCrawler(c.GetName())

	links, err := c.ExtractRecipeLinks(ctx, collectionURL)
	if err != nil {
		return nil, err
	}

	if max > 0 && len(links) > max {
		links = links[:max]
	}

	recipes := make([]Recipe, 0, len(links))
	for i, link := range links {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return recipes, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return recipes, err
		}

		log.Debug().Int("index", i+1).Int("total", len(links)).Str("url", link).Msg("Scraping recipe")

		recipe, err := c.ScrapeRecipe(ctx, link)
		if err != nil {
			log.Warn().Err(err).Str("url", link).Msg("Skipping recipe")
			continue
		}
		if len(recipe.Ingredients) == 0 {
			log.Warn().Str("url", link).Str("name", recipe.Name).Msg("Skipping recipe without ingredients")
			continue
		}
		recipes = append(recipes, *recipe)
	}

	log.Info().
		Str("collection", collectionURL).
		Int("links", len(links)).
		Int("recipes", len(recipes)).
		Msg("Scraped collection")

	return recipes, nil
}

// ScrapeURLs scrapes each URL in order, skipping failures, with delay between requests
func ScrapeURLs(ctx context.Context, c Crawler, urls []string, delay time.Duration) ([]Recipe, error) {
	log := logger.ForCrawler(c.GetName())

	var recipes []Recipe
	for i, url := range urls {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return recipes, ctx.Err()
			case <-time.After(delay):
			}
		}

		recipe, err := c.ScrapeRecipe(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Skipping recipe")
			continue
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, nil
}
