package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/internal/finder"
	"sjsage522/menufinder/logger"
	"sjsage522/menufinder/services/store"

	"github.com/google/uuid"
)

// ErrNoRecipes is returned when a scrape produced nothing usable
var ErrNoRecipes = errors.New("no recipes could be scraped")

// Options controls where the catalog scrapes from
type Options struct {
	CollectionURL string
	MaxRecipes    int
	Delay         time.Duration
}

// Catalog holds the recipe collection in memory, backed by a store and a crawler
type Catalog struct {
	crawler crawler.Crawler
	store   store.RecipeStore
	opts    Options

	mu      sync.RWMutex
	recipes []crawler.Recipe
	byID    map[string]int
}

// New creates an empty catalog
func New(c crawler.Crawler, s store.RecipeStore, opts Options) *Catalog {
	return &Catalog{
		crawler: c,
		store:   s,
		opts:    opts,
		byID:    make(map[string]int),
	}
}

// LoadOrScrape loads the stored recipes, scraping and saving the collection when nothing is stored
func (c *Catalog) LoadOrScrape(ctx context.Context) ([]crawler.Recipe, error) {
	log := logger.ForStore()

	recipes, err := c.store.Load(ctx)
	switch {
	case err == nil && len(recipes) > 0:
		AssignIDs(recipes)
		c.replace(recipes)
		log.Info().Int("recipes", len(recipes)).Msg("Loaded recipes from store")
		return c.Recipes(), nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		log.Warn().Err(err).Msg("Stored recipes unreadable, scraping again")
	}

	return c.scrapeAndSave(ctx, c.opts.CollectionURL, c.opts.MaxRecipes)
}

// Reload clears the store and scrapes the configured collection again
func (c *Catalog) Reload(ctx context.Context) ([]crawler.Recipe, error) {
	return c.ReloadFrom(ctx, c.opts.CollectionURL, c.opts.MaxRecipes)
}

// ReloadFrom clears the store and scrapes the given collection, bypassing cached pages
func (c *Catalog) ReloadFrom(ctx context.Context, collectionURL string, max int) ([]crawler.Recipe, error) {
	if collectionURL == "" {
		collectionURL = c.opts.CollectionURL
	}
	if max <= 0 {
		max = c.opts.MaxRecipes
	}

	if err := c.store.Clear(ctx); err != nil {
		return nil, err
	}
	return c.scrapeAndSave(crawler.WithFreshPages(ctx), collectionURL, max)
}

// Refresh scrapes the collection and replaces the catalog, returning recipes not seen before.
// A scrape that yields nothing leaves the catalog untouched.
func (c *Catalog) Refresh(ctx context.Context) ([]crawler.Recipe, error) {
	ctx = crawler.WithFreshPages(ctx)
	scraped, err := crawler.ScrapeCollection(ctx, c.crawler, c.opts.CollectionURL, c.opts.MaxRecipes, c.opts.Delay)
	if err != nil {
		return nil, err
	}
	if len(scraped) == 0 {
		return nil, ErrNoRecipes
	}
	AssignIDs(scraped)

	c.mu.RLock()
	var fresh []crawler.Recipe
	for _, r := range scraped {
		if _, ok := c.byID[r.ID]; !ok {
			fresh = append(fresh, r)
		}
	}
	c.mu.RUnlock()

	c.replace(scraped)
	if err := c.store.Save(ctx, scraped); err != nil {
		logger.ForStore().Warn().Err(err).Msg("Failed to save refreshed recipes")
	}
	return fresh, nil
}

func (c *Catalog) scrapeAndSave(ctx context.Context, collectionURL string, max int) ([]crawler.Recipe, error) {
	recipes, err := crawler.ScrapeCollection(ctx, c.crawler, collectionURL, max, c.opts.Delay)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}

	AssignIDs(recipes)
	c.replace(recipes)

	if err := c.store.Save(ctx, recipes); err != nil {
		logger.ForStore().Warn().Err(err).Msg("Failed to save scraped recipes")
	}
	return c.Recipes(), nil
}

func (c *Catalog) replace(recipes []crawler.Recipe) {
	byID := make(map[string]int, len(recipes))
	for i, r := range recipes {
		if _, ok := byID[r.ID]; !ok {
			byID[r.ID] = i
		}
	}

	c.mu.Lock()
	c.recipes = recipes
	c.byID = byID
	c.mu.Unlock()
}

// Recipes returns a copy of the current collection
func (c *Catalog) Recipes() []crawler.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]crawler.Recipe(nil), c.recipes...)
}

// Len returns the number of recipes in the catalog
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recipes)
}

// Get returns the recipe with the given id
func (c *Catalog) Get(id string) (crawler.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return crawler.Recipe{}, false
	}
	return c.recipes[i], true
}

// Search filters and ranks the catalog
func (c *Catalog) Search(selected []string, query string) []finder.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return finder.Search(c.recipes, selected, query)
}

// Ingredients lists every ingredient name in the catalog
func (c *Catalog) Ingredients() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return finder.AllIngredients(c.recipes)
}

// AssignIDs gives every recipe without an id a stable one derived from its URL, or its name
func AssignIDs(recipes []crawler.Recipe) {
	for i := range recipes {
		if recipes[i].ID != "" {
			continue
		}
		seed := recipes[i].URL
		if seed == "" {
			seed = recipes[i].Name
		}
		recipes[i].ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
	}
}
