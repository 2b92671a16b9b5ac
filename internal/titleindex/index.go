// Package titleindex maps normalized book titles to catalog positions.
package titleindex

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/mfenderov/bookrec/pkg/models"
)

// ErrNotFound is returned by Lookup for titles that are not indexed.
var ErrNotFound = errors.New("title not found")

// Index is a read-only title lookup. When several books share a normalized
// title, the first one in catalog order wins and the others can only be
// reached by position.
type Index struct {
	positions map[string]int
}

// Normalize lowercases the title and trims surrounding whitespace.
func Normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Build indexes books by their position in the slice.
func Build(books []models.Book) *Index {
	idx := &Index{positions: make(map[string]int, len(books))}
	for pos, b := range books {
		key := Normalize(b.Title)
		if prev, ok := idx.positions[key]; ok {
			slog.Debug("duplicate title ignored", "title", key, "kept", prev, "dropped", pos)
			continue
		}
		idx.positions[key] = pos
	}
	return idx
}

// Lookup returns the position of a title.
func (i *Index) Lookup(title string) (int, error) {
	pos, ok := i.positions[Normalize(title)]
	if !ok {
		return 0, ErrNotFound
	}
	return pos, nil
}

// Len returns the number of distinct titles.
func (i *Index) Len() int {
	return len(i.positions)
}
