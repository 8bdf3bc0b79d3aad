package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/menufinder/config"
	"sjsage522/menufinder/helpers"
	"sjsage522/menufinder/internal/crawler"
	"sjsage522/menufinder/internal/export"
	"sjsage522/menufinder/services/cache"
	"sjsage522/menufinder/services/store"

	"github.com/spf13/cobra"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	source  string
	delayMS int
	baseURL string
}

func newRootCmd() *cobra.Command {
	cfg := config.LoadConfig()
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "menuctl",
		Short:         "Thai recipe scraper toolbox",
		Long:          `Scrape recipes from Kapook and TrueID Food, pre-load the recipe cache and export datasets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			helpers.SetRequestTimeout(cfg.RequestTimeout)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.source, "source", "s", cfg.Source, "Recipe site: trueid or kapook")
	rootCmd.PersistentFlags().IntVarP(&opts.delayMS, "delay", "d", -1, "Delay between recipe requests in milliseconds (default depends on the site)")
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Override the site base URL")

	rootCmd.AddCommand(
		newPreloadCmd(cfg, opts),
		newScrapeCmd(cfg, opts),
		newInspectCmd(cfg, opts),
		newLinksCmd(cfg, opts),
	)
	return rootCmd
}

// newCrawler builds the crawler for the selected source with an in-process cache
func (o *globalOptions) newCrawler(cfg *config.Config) (*crawler.ConfigurableCrawler, error) {
	siteCfg := *cfg
	if o.baseURL != "" {
		siteCfg.KapookBaseURL = o.baseURL
		siteCfg.TrueIDBaseURL = o.baseURL
	}
	return crawler.CreateCrawlerFor(o.source, &siteCfg, cache.New(cfg.MemcacheAddr))
}

func (o *globalOptions) delay() time.Duration {
	if o.delayMS >= 0 {
		return time.Duration(o.delayMS) * time.Millisecond
	}
	return crawler.DefaultDelay(o.source)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func newPreloadCmd(cfg *config.Config, opts *globalOptions) *cobra.Command {
	var (
		collectionURL string
		maxRecipes    int
		outFile       string
	)

	cmd := &cobra.Command{
		Use:   "preload",
		Short: "Scrape a recipe collection into the JSON cache file",
		Long: `Scrape a collection page and save the recipes to the cache file used by the web app.
Example: menuctl preload --url https://food.trueid.net/detail/M6oyloE4klNB --max 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			c, err := opts.newCrawler(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📡 Scraping %s (max %d recipes)\n", collectionURL, maxRecipes)

			recipes, err := crawler.ScrapeCollection(ctx, c, collectionURL, maxRecipes, opts.delay())
			if err != nil {
				return err
			}
			if len(recipes) == 0 {
				return fmt.Errorf("no recipes scraped from %s", collectionURL)
			}

			if err := store.NewFileStore(outFile).Save(ctx, recipes); err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Saved %d recipes to %s\n", len(recipes), outFile)
			printSample(out, recipes, 5)
			return nil
		},
	}

	cmd.Flags().StringVarP(&collectionURL, "url", "u", cfg.CollectionURL, "Collection page URL")
	cmd.Flags().IntVarP(&maxRecipes, "max", "m", 30, "Maximum number of recipes to scrape")
	cmd.Flags().StringVarP(&outFile, "out", "o", cfg.CacheFile, "Cache file to write")
	return cmd
}

func printSample(out io.Writer, recipes []crawler.Recipe, n int) {
	fmt.Fprintln(out, "\n📋 Sample Recipes:")
	for i, r := range recipes {
		if i == n {
			fmt.Fprintf(out, "\n  ... and %d more recipes\n", len(recipes)-n)
			break
		}
		fmt.Fprintf(out, "\n  %d. %s\n", i+1, r.Name)
		fmt.Fprintf(out, "     Ingredients: %d items\n", len(r.Ingredients))
		fmt.Fprintf(out, "     Steps: %d items\n", len(r.Steps))
	}
}

func newScrapeCmd(cfg *config.Config, opts *globalOptions) *cobra.Command {
	var (
		listURL  string
		limit    int
		csvFile  string
		xlsxFile string
	)

	cmd := &cobra.Command{
		Use:   "scrape [recipe urls...]",
		Short: "Scrape recipe pages into a CSV or XLSX dataset",
		Long: `Scrape the given recipe pages, or the first recipes linked from a list page, and write a dataset.
Example: menuctl scrape --source kapook https://cooking.kapook.com/view273026.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			c, err := opts.newCrawler(cfg)
			if err != nil {
				return err
			}

			urls := append([]string{}, args...)
			if listURL != "" {
				links, err := c.ExtractRecipeLinks(ctx, listURL)
				if err != nil {
					return err
				}
				if limit > 0 && len(links) > limit {
					links = links[:limit]
				}
				urls = append(urls, links...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no recipe URLs given; pass URLs or --list")
			}

			out := cmd.OutOrStdout()
			for _, u := range urls {
				fmt.Fprintln(out, "กำลังดึง:", u)
			}

			recipes, err := crawler.ScrapeURLs(ctx, c, urls, opts.delay())
			if err != nil {
				return err
			}

			if csvFile != "" {
				if err := export.WriteFile(csvFile, recipes); err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ Wrote %d recipes to %s\n", len(recipes), csvFile)
			}
			if xlsxFile != "" {
				if err := export.WriteFile(xlsxFile, recipes); err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ Wrote %d recipes to %s\n", len(recipes), xlsxFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&listURL, "list", "l", "", "List page to collect recipe links from")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of links taken from the list page")
	cmd.Flags().StringVar(&csvFile, "csv", cfg.DatasetFile, "CSV dataset to write (empty to skip)")
	cmd.Flags().StringVar(&xlsxFile, "xlsx", "", "XLSX dataset to write")
	return cmd
}

func newInspectCmd(cfg *config.Config, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <recipe url>",
		Short: "Scrape one recipe and print what the selectors found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			c, err := opts.newCrawler(cfg)
			if err != nil {
				return err
			}

			recipe, err := c.ScrapeRecipe(ctx, args[0])
			if err != nil {
				return fmt.Errorf("❌ scrape failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ชื่อสูตร:", recipe.Name)
			fmt.Fprintln(out, "วัตถุดิบ:")
			for _, ing := range recipe.Ingredients {
				fmt.Fprintln(out, "-", ing)
			}
			fmt.Fprintf(out, "ขั้นตอน: %d\n", len(recipe.Steps))
			return nil
		},
	}
}

func newLinksCmd(cfg *config.Config, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "links <page url>",
		Short: "Print the recipe links found on a list or collection page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			c, err := opts.newCrawler(cfg)
			if err != nil {
				return err
			}

			links, err := c.ExtractRecipeLinks(ctx, args[0])
			if err != nil {
				return err
			}
			for _, link := range links {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			return nil
		},
	}
}
