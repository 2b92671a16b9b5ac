package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mfenderov/bookrec/internal/catalog"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/internal/similarity"
	"github.com/mfenderov/bookrec/pkg/models"
)

// SnapshotSource serves previously published build artifacts.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (string, error)
	GetMatrix(ctx context.Context, prefix string) (*similarity.Matrix, error)
	GetCatalog(ctx context.Context, prefix string) ([]models.Book, error)
}

// LoadLocal assembles a corpus from a catalog CSV and its matrix file.
func LoadLocal(catalogPath, matrixPath string) (*recommend.Corpus, error) {
	books, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return nil, err
	}
	matrix, err := similarity.LoadFile(matrixPath)
	if err != nil {
		return nil, err
	}
	corpus, err := recommend.NewCorpus(books, matrix)
	if err != nil {
		return nil, fmt.Errorf("%s does not match %s: %w", matrixPath, catalogPath, err)
	}
	slog.Debug("corpus loaded", "catalog", catalogPath, "matrix", matrixPath, "books", corpus.Len())
	return corpus, nil
}

// LoadSnapshot assembles a corpus from a published snapshot. An empty
// prefix selects the latest one.
func LoadSnapshot(ctx context.Context, src SnapshotSource, prefix string) (*recommend.Corpus, error) {
	if prefix == "" {
		latest, err := src.LatestSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		prefix = latest
	}

	books, err := src.GetCatalog(ctx, prefix)
	if err != nil {
		return nil, err
	}
	matrix, err := src.GetMatrix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	corpus, err := recommend.NewCorpus(books, matrix)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", prefix, err)
	}
	slog.Debug("corpus loaded", "snapshot", prefix, "books", corpus.Len())
	return corpus, nil
}
