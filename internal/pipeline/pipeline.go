// Package pipeline runs the offline build: catalog in, similarity matrix and
// search index out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/bookrec/internal/catalog"
	"github.com/mfenderov/bookrec/internal/metrics"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/internal/similarity"
	"github.com/mfenderov/bookrec/internal/storage"
	"github.com/mfenderov/bookrec/pkg/models"
)

// SnapshotStore receives build artifacts.
type SnapshotStore interface {
	EnsureBucket(ctx context.Context) error
	PutMatrix(ctx context.Context, prefix string, m *similarity.Matrix) error
	PutCatalog(ctx context.Context, prefix string, books []models.Book) error
	PutMetadata(ctx context.Context, prefix string, meta storage.SnapshotMetadata) error
}

// BookIndexer receives the catalog for keyword search.
type BookIndexer interface {
	DeleteIndex(ctx context.Context) error
	CreateIndex(ctx context.Context) error
	IndexBooks(ctx context.Context, books []models.Book) (int, error)
	Refresh(ctx context.Context) error
}

// Config holds pipeline configuration.
type Config struct {
	CatalogPath string
	MatrixPath  string
	Options     recommend.Options
}

// Result holds pipeline execution results.
type Result struct {
	Stats      *recommend.BuildStats
	MatrixPath string
	Snapshot   string // Empty if no store is configured
	Indexed    int
	Duration   time.Duration
	Errors     []error // Publishing failures; the local build still succeeded
}

// Pipeline orchestrates loading, building, saving and publishing.
type Pipeline struct {
	config  Config
	store   SnapshotStore // nil if object storage is disabled
	indexer BookIndexer   // nil if search indexing is disabled
	now     func() time.Time
}

// New creates a new Pipeline. store and indexer may be nil.
func New(config Config, store SnapshotStore, indexer BookIndexer) (*Pipeline, error) {
	if config.CatalogPath == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	if config.MatrixPath == "" {
		return nil, fmt.Errorf("matrix path is required")
	}
	return &Pipeline{
		config:  config,
		store:   store,
		indexer: indexer,
		now:     time.Now,
	}, nil
}

// Run executes the build. Any failure before the matrix file is written
// aborts the run and leaves an existing matrix file untouched.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{MatrixPath: p.config.MatrixPath}

	books, err := catalog.LoadFile(p.config.CatalogPath)
	if err != nil {
		return nil, err
	}

	corpus, stats, err := recommend.Build(books, p.config.Options)
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	result.Stats = stats
	metrics.RecordBuild(stats)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := corpus.Matrix().SaveFile(p.config.MatrixPath); err != nil {
		return nil, err
	}
	slog.Info("matrix saved", "path", p.config.MatrixPath, "books", corpus.Len())

	if p.store != nil {
		prefix, err := p.publish(ctx, corpus, stats)
		if err != nil {
			slog.Error("failed to publish snapshot", "error", err)
			result.Errors = append(result.Errors, err)
		} else {
			result.Snapshot = prefix
		}
	}

	if p.indexer != nil {
		n, err := p.index(ctx, corpus.Books())
		result.Indexed = n
		if err != nil {
			slog.Error("failed to index catalog", "error", err)
			result.Errors = append(result.Errors, err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (p *Pipeline) publish(ctx context.Context, corpus *recommend.Corpus, stats *recommend.BuildStats) (string, error) {
	if err := p.store.EnsureBucket(ctx); err != nil {
		return "", err
	}

	now := p.now()
	prefix := storage.SnapshotPrefix(now)

	if err := p.store.PutMatrix(ctx, prefix, corpus.Matrix()); err != nil {
		return "", err
	}
	if err := p.store.PutCatalog(ctx, prefix, corpus.Books()); err != nil {
		return "", err
	}
	meta := storage.SnapshotMetadata{
		CreatedAt:  now.UTC().Format(time.RFC3339),
		Source:     p.config.CatalogPath,
		Books:      stats.Books,
		Vocabulary: stats.Vocabulary,
		EmptyDocs:  stats.EmptyDocs,
	}
	if err := p.store.PutMetadata(ctx, prefix, meta); err != nil {
		return "", err
	}

	slog.Info("snapshot published", "prefix", prefix)
	return prefix, nil
}

// index replaces the search index with the current catalog so document IDs
// match corpus positions.
func (p *Pipeline) index(ctx context.Context, books []models.Book) (int, error) {
	if err := p.indexer.DeleteIndex(ctx); err != nil {
		return 0, err
	}
	if err := p.indexer.CreateIndex(ctx); err != nil {
		return 0, err
	}
	n, err := p.indexer.IndexBooks(ctx, books)
	if err != nil {
		return n, err
	}
	if err := p.indexer.Refresh(ctx); err != nil {
		slog.Warn("failed to refresh index", "error", err)
	}

	slog.Info("catalog indexed", "books", n)
	return n, nil
}
