// Package catalog reads, writes and cleans the tabular book catalog.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mfenderov/bookrec/pkg/models"
)

// Column names, matching the collected dataset.
const (
	ColTitle         = "title"
	ColAuthor        = "author"
	ColDescription   = "description"
	ColCategories    = "categories"
	ColPublishedDate = "publishedDate"
	ColPageCount     = "pageCount"
	ColAverageRating = "averageRating"
	ColGoodreadsURL  = "goodreadsUrl"
)

// Header is the column order used when writing.
var Header = []string{
	ColTitle, ColAuthor, ColDescription, ColCategories,
	ColPublishedDate, ColPageCount, ColAverageRating, ColGoodreadsURL,
}

// ErrMissingColumn is returned when the header lacks the title column.
var ErrMissingColumn = errors.New("missing required column")

// Load parses a catalog CSV. Unknown columns are ignored and absent optional
// columns read as empty. Each book's ID is its row position.
func Load(r io.Reader) ([]models.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := cols[ColTitle]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColTitle)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var books []models.Book
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		b := models.Book{
			ID:            len(books),
			Title:         field(rec, ColTitle),
			Author:        field(rec, ColAuthor),
			Description:   field(rec, ColDescription),
			Categories:    field(rec, ColCategories),
			PublishedDate: field(rec, ColPublishedDate),
			GoodreadsURL:  field(rec, ColGoodreadsURL),
		}
		b.PageCount = parseInt(field(rec, ColPageCount))
		b.AverageRating = parseFloat(field(rec, ColAverageRating))
		books = append(books, b)
	}

	slog.Debug("catalog loaded", "books", len(books))
	return books, nil
}

// Write encodes books as CSV with Header.
func Write(w io.Writer, books []models.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, b := range books {
		rec := []string{
			b.Title, b.Author, b.Description, b.Categories,
			b.PublishedDate,
			strconv.Itoa(b.PageCount),
			strconv.FormatFloat(b.AverageRating, 'f', -1, 64),
			b.GoodreadsURL,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadFile reads a catalog CSV from disk.
func LoadFile(path string) ([]models.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// SaveFile writes books to path atomically (tmp file + rename).
func SaveFile(path string, books []models.Book) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(f, books); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// parseInt accepts integers and float-formatted integers ("320.0"), as written
// by spreadsheet tools. Anything else is 0.
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !isNaN(f) {
		return int(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || isNaN(f) {
		return 0
	}
	return f
}

func isNaN(f float64) bool {
	return f != f
}
