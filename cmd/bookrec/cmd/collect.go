package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/bookrec/internal/catalog"
	"github.com/mfenderov/bookrec/internal/enrichment"
	"github.com/mfenderov/bookrec/internal/googlebooks"
	"github.com/mfenderov/bookrec/internal/scraper"
)

var (
	collectInput  string
	collectOutput string
	collectScrape bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fill missing catalog fields from Google Books and Goodreads",
	Long: `Read a raw catalog CSV, look up each book on Google Books and fill
in missing descriptions, publication dates, categories, page counts and
ratings. With --scrape, books that still lack a description and carry a
goodreadsUrl are fetched from Goodreads. Existing values are never replaced.

Examples:
  # Enrich the configured raw catalog in place
  bookrec collect

  # Enrich a specific file into a new one, scraping Goodreads too
  bookrec collect --input data/books_dataset.csv --output data/books_dataset_updated.csv --scrape`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectInput, "input", "", "raw catalog CSV (default catalog.raw_path)")
	collectCmd.Flags().StringVar(&collectOutput, "output", "", "enriched catalog CSV (default: overwrite input)")
	collectCmd.Flags().BoolVar(&collectScrape, "scrape", false, "scrape Goodreads for missing descriptions")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	input := collectInput
	if input == "" {
		input = cfg.Catalog.RawPath
	}
	output := collectOutput
	if output == "" {
		output = input
	}
	slog.Debug("collect command starting", "input", input, "output", output)

	books, err := catalog.LoadFile(input)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	var volumes enrichment.VolumeLookup
	if cfg.GoogleBooks.Enabled {
		client, err := googlebooks.New(googlebooks.Config{
			BaseURL:           cfg.GoogleBooks.BaseURL,
			APIKey:            cfg.GoogleBooks.APIKey,
			RequestsPerSecond: cfg.GoogleBooks.RequestsPerSecond,
			Timeout:           cfg.GoogleBooks.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create Google Books client: %w", err)
		}
		volumes = client
	}

	var pages enrichment.DescriptionScraper
	if collectScrape || cfg.Scraper.Enabled {
		pages = scraper.New(scraper.Config{
			Delay:     cfg.Scraper.Delay,
			Timeout:   cfg.Scraper.Timeout,
			UserAgent: cfg.Scraper.UserAgent,
		})
	}

	if volumes == nil && pages == nil {
		return fmt.Errorf("nothing to collect from: enable googlebooks or pass --scrape")
	}

	fmt.Printf("Collecting metadata for %d books...\n", len(books))

	enriched, result, err := enrichment.New(volumes, pages).Enrich(ctx, books)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Save what was gathered even when interrupted.
	if err := catalog.SaveFile(output, enriched); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	fmt.Printf("Books: %d, Filled: %d, Scraped descriptions: %d, Duration: %v\n",
		result.Books, result.Filled, result.Scraped, result.Duration)
	for _, e := range result.Errors {
		fmt.Printf("  Warning: %s\n", e)
	}
	fmt.Printf("Saved to %s\n", output)

	return err
}
