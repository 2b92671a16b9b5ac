// Package recommend ranks books by TF-IDF cosine similarity to a given title.
package recommend

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/bookrec/internal/similarity"
	"github.com/mfenderov/bookrec/internal/tfidf"
	"github.com/mfenderov/bookrec/internal/titleindex"
	"github.com/mfenderov/bookrec/pkg/models"
)

// Options configures a corpus build.
type Options struct {
	StopWords       map[string]struct{} // nil uses the English list
	MinDocFrequency int
	Workers         int // Similarity computation parallelism
}

// Corpus is an immutable snapshot of the catalog: books, title index and
// similarity matrix. It is safe for concurrent use by any number of readers.
type Corpus struct {
	books  []models.Book
	index  *titleindex.Index
	matrix *similarity.Matrix
}

// BuildStats describes a completed build.
type BuildStats struct {
	Books      int
	Vocabulary int
	EmptyDocs  int // Books whose text has no indexable terms
	Duration   time.Duration
}

// Build vectorizes the books and computes their similarity matrix.
// No Corpus is returned unless every step succeeds.
func Build(books []models.Book, opts Options) (*Corpus, *BuildStats, error) {
	start := time.Now()
	if len(books) == 0 {
		return nil, nil, ErrEmptyCorpus
	}

	docs := make([]string, len(books))
	for i, b := range books {
		docs[i] = b.CombinedText()
	}

	vectorizer := tfidf.NewVectorizer()
	if opts.StopWords != nil {
		vectorizer.StopWords = opts.StopWords
	}
	if opts.MinDocFrequency > 0 {
		vectorizer.MinDocFrequency = opts.MinDocFrequency
	}

	vocab, vectors, err := vectorizer.FitTransform(docs)
	if err != nil {
		return nil, nil, fmt.Errorf("vectorization failed: %w", err)
	}

	stats := &BuildStats{Books: len(books), Vocabulary: vocab.Len()}
	for i, v := range vectors {
		if len(v) == 0 {
			stats.EmptyDocs++
			slog.Debug("book has no indexable terms", "position", i, "title", books[i].Title)
		}
	}

	matrix, err := similarity.Compute(vectors, similarity.WithWorkers(opts.Workers))
	if err != nil {
		return nil, nil, fmt.Errorf("similarity computation failed: %w", err)
	}

	c, err := NewCorpus(books, matrix)
	if err != nil {
		return nil, nil, err
	}

	stats.Duration = time.Since(start)
	slog.Info("corpus built",
		"books", stats.Books,
		"vocabulary", stats.Vocabulary,
		"empty_docs", stats.EmptyDocs,
		"duration", stats.Duration)

	return c, stats, nil
}

// NewCorpus assembles a corpus from books and a previously built matrix.
// Book IDs are reassigned to their positions.
func NewCorpus(books []models.Book, matrix *similarity.Matrix) (*Corpus, error) {
	if matrix == nil {
		return nil, fmt.Errorf("%w: nil similarity matrix", ErrCorpusState)
	}
	if matrix.Size() != len(books) {
		return nil, fmt.Errorf("%w: matrix size %d does not match %d books",
			ErrCorpusState, matrix.Size(), len(books))
	}

	owned := make([]models.Book, len(books))
	copy(owned, books)
	for i := range owned {
		owned[i].ID = i
	}

	return &Corpus{
		books:  owned,
		index:  titleindex.Build(owned),
		matrix: matrix,
	}, nil
}

// Len returns the number of books.
func (c *Corpus) Len() int {
	return len(c.books)
}

// Book returns the book at position id.
func (c *Corpus) Book(id int) (models.Book, bool) {
	if id < 0 || id >= len(c.books) {
		return models.Book{}, false
	}
	return c.books[id], true
}

// Lookup returns the book indexed under title.
func (c *Corpus) Lookup(title string) (models.Book, error) {
	pos, err := c.index.Lookup(title)
	if err != nil {
		return models.Book{}, err
	}
	return c.books[pos], nil
}

// Matrix returns the similarity matrix. It must not be modified.
func (c *Corpus) Matrix() *similarity.Matrix {
	return c.matrix
}

// Books returns a copy of the catalog in position order.
func (c *Corpus) Books() []models.Book {
	out := make([]models.Book, len(c.books))
	copy(out, c.books)
	return out
}
