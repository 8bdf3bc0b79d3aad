package worker

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/services/publisher"
)

const defaultStreamKey = "recipes"

// Refresher re-scrapes the recipe collection and reports recipes it had not seen
type Refresher interface {
	Refresh(ctx context.Context) ([]crawler.Recipe, error)
}

// Worker refreshes the catalog on an interval and publishes new recipes
type Worker struct {
	refresher       Refresher
	publisher       publisher.Publisher
	logger          helpers.LoggerInterface
	refreshInterval time.Duration
}

// NewWorker creates a new worker
func NewWorker(
	refresher Refresher,
	pub publisher.Publisher,
	logger helpers.LoggerInterface,
	refreshInterval time.Duration,
) *Worker {
	return &Worker{
		refresher:       refresher,
		publisher:       pub,
		logger:          logger,
		refreshInterval: refreshInterval,
	}
}

// Start refreshes once per interval until ctx is cancelled
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			w.refreshAndPublish(ctx)
			if os.Getenv("MENU_ENVIRONMENT") != "production" {
				w.logger.LogInfo("Refresh took %s", time.Since(start))
			}
		}
	}
}

// refreshAndPublish runs one refresh, publishes the new recipes and trims the streams
func (w *Worker) refreshAndPublish(ctx context.Context) {
	recipes, err := w.refresher.Refresh(ctx)
	if err != nil {
		w.logger.LogError("Refresh", err)
		return
	}

	published := 0
	for i, recipe := range recipes {
		data, err := json.Marshal(recipe)
		if err != nil {
			w.logger.LogError(recipe.Provider, err)
			continue
		}

		key := recipe.Provider
		if key == "" {
			key = defaultStreamKey
		}
		if err := w.publisher.Publish(ctx, key, data); err != nil {
			w.logger.LogError(key, err)
			continue
		}
		published++

		if i == 0 && os.Getenv("MENU_ENVIRONMENT") != "production" {
			w.logSample(recipe)
		}
	}

	if published > 0 {
		w.logger.LogInfo("Published %d new recipes", published)
	}

	if err := w.publisher.TrimStreams(ctx); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
}

// logSample logs the first published recipe without its bulky fields
func (w *Worker) logSample(recipe crawler.Recipe) {
	sample := map[string]interface{}{
		"id":          recipe.ID,
		"name":        recipe.Name,
		"ingredients": len(recipe.Ingredients),
		"steps":       len(recipe.Steps),
	}
	if recipe.Image != "" {
		sample["image"] = "OK"
	}
	data, err := json.Marshal(sample)
	if err != nil {
		w.logger.LogError(recipe.Provider, err)
		return
	}
	w.logger.LogInfo("Published recipe: %s", string(data))
}
