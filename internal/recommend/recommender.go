package recommend

import (
	"fmt"
	"sort"

	"github.com/mfenderov/bookrec/pkg/models"
)

// Recommend returns up to k books most similar to title, best first.
// Ties are broken by ascending catalog position and the queried book itself is
// never included. A title missing from the catalog yields ErrNotFound.
func (c *Corpus) Recommend(title string, k int) ([]models.Recommendation, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	if len(c.books) == 0 {
		return nil, fmt.Errorf("%w: corpus is empty", ErrCorpusState)
	}

	pos, err := c.index.Lookup(title)
	if err != nil {
		return nil, err
	}
	return c.RecommendByID(pos, k)
}

// RecommendByID is Recommend for a known catalog position. It also reaches
// books whose title is shadowed by an earlier duplicate.
func (c *Corpus) RecommendByID(id, k int) ([]models.Recommendation, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	if id < 0 || id >= len(c.books) || id >= c.matrix.Size() {
		return nil, fmt.Errorf("%w: position %d out of range for %d books", ErrCorpusState, id, len(c.books))
	}

	row := c.matrix.Row(id)
	candidates := make([]int, 0, len(row)-1)
	for j := range row {
		if j != id {
			candidates = append(candidates, j)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return row[candidates[a]] > row[candidates[b]]
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	recs := make([]models.Recommendation, len(candidates))
	for i, j := range candidates {
		recs[i] = models.Recommendation{Book: c.books[j], Score: row[j]}
	}
	return recs, nil
}
