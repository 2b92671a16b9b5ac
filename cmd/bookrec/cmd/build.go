package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/bookrec/internal/pipeline"
)

var (
	buildNoUpload bool
	buildNoIndex  bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compute and save the similarity matrix",
	Long: `Vectorize the cleaned catalog with TF-IDF, compute the pairwise cosine
similarity matrix and save it. When storage is enabled the matrix, catalog
and build metadata are published as a snapshot; when Elasticsearch is
enabled the catalog is reindexed for keyword search.

Examples:
  # Build from the configured cleaned catalog
  bookrec build

  # Build locally only
  bookrec build --no-upload --no-index`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(&buildNoUpload, "no-upload", false, "skip publishing to object storage")
	buildCmd.Flags().BoolVar(&buildNoIndex, "no-index", false, "skip Elasticsearch indexing")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("build command starting", "catalog", cfg.Catalog.CleanedPath, "matrix", cfg.Catalog.MatrixPath)

	var store pipeline.SnapshotStore
	if cfg.Storage.Enabled && !buildNoUpload {
		client, err := newStorageClient(cfg.Storage)
		if err != nil {
			return err
		}
		store = client
	}

	var indexer pipeline.BookIndexer
	if cfg.Elasticsearch.Enabled && !buildNoIndex {
		client, err := newESClient(cfg.Elasticsearch)
		if err != nil {
			return err
		}
		indexer = client
	}

	p, err := pipeline.New(pipeline.Config{
		CatalogPath: cfg.Catalog.CleanedPath,
		MatrixPath:  cfg.Catalog.MatrixPath,
		Options:     buildOptions(cfg),
	}, store, indexer)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	fmt.Printf("Building from %s\n", cfg.Catalog.CleanedPath)

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Books: %d, Vocabulary: %d, Empty documents: %d, Duration: %v\n",
		result.Stats.Books, result.Stats.Vocabulary, result.Stats.EmptyDocs, result.Duration)
	fmt.Printf("Matrix saved to %s\n", result.MatrixPath)
	if result.Snapshot != "" {
		fmt.Printf("Snapshot: %s\n", result.Snapshot)
	}
	if indexer != nil {
		fmt.Printf("Indexed: %d books\n", result.Indexed)
	}
	for _, e := range result.Errors {
		fmt.Printf("  Warning: %v\n", e)
	}
	return nil
}
