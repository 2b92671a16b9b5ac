// Package enrichment fills gaps in a raw book catalog from Google Books and
// Goodreads.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/bookrec/internal/googlebooks"
	"github.com/mfenderov/bookrec/internal/processor"
	"github.com/mfenderov/bookrec/internal/scraper"
	"github.com/mfenderov/bookrec/pkg/models"
)

// VolumeLookup finds Google Books metadata for a title and author.
type VolumeLookup interface {
	Lookup(ctx context.Context, title, author string) (*googlebooks.Volume, error)
}

// DescriptionScraper fetches a description from a book page.
type DescriptionScraper interface {
	Description(ctx context.Context, pageURL string) (string, error)
}

// Result holds enrichment execution results.
type Result struct {
	Books    int
	Looked   int // Rows sent to Google Books
	Filled   int // Rows that gained at least one field
	Scraped  int // Descriptions taken from Goodreads
	Duration time.Duration
	Errors   []string
}

// Engine fills only the missing fields of each catalog row. Existing values
// are never overwritten.
type Engine struct {
	volumes   VolumeLookup       // nil if Google Books is disabled
	pages     DescriptionScraper // nil if scraping is disabled
	processor *processor.Processor
}

// New creates a new enrichment engine. Either source may be nil.
func New(volumes VolumeLookup, pages DescriptionScraper) *Engine {
	return &Engine{
		volumes:   volumes,
		pages:     pages,
		processor: processor.New(),
	}
}

// Enrich returns a copy of books with missing fields filled in. Per-row
// failures are recorded in Result.Errors and do not stop the run; a
// cancelled context stops it and returns the rows processed so far merged
// with the untouched remainder.
func (e *Engine) Enrich(ctx context.Context, books []models.Book) ([]models.Book, *Result, error) {
	start := time.Now()
	out := make([]models.Book, len(books))
	copy(out, books)
	result := &Result{Books: len(books)}

	slog.Info("starting enrichment", "books", len(books))

	for i := range out {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}

		filled, err := e.enrichBook(ctx, &out[i], result)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Errors = append(result.Errors, "context cancelled")
				break
			}
			slog.Warn("failed to enrich book", "title", out[i].Title, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", out[i].Title, err))
		}
		if filled {
			result.Filled++
		}
	}

	result.Duration = time.Since(start)
	slog.Info("enrichment complete",
		"books", result.Books,
		"filled", result.Filled,
		"scraped", result.Scraped,
		"duration", result.Duration,
		"errors", len(result.Errors))

	return out, result, ctx.Err()
}

func (e *Engine) enrichBook(ctx context.Context, book *models.Book, result *Result) (bool, error) {
	filled := false
	var errs []error

	if e.volumes != nil && needsVolume(book) && book.Title != "" {
		result.Looked++
		vol, err := e.volumes.Lookup(ctx, book.Title, book.Author)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("google books: %w", err))
		case vol != nil:
			filled = e.applyVolume(book, vol) || filled
		}
	}

	if e.pages != nil && book.Description == "" && book.GoodreadsURL != "" {
		desc, err := e.pages.Description(ctx, book.GoodreadsURL)
		switch {
		case errors.Is(err, scraper.ErrNoDescription):
			slog.Debug("no goodreads description", "title", book.Title)
		case err != nil:
			errs = append(errs, fmt.Errorf("goodreads: %w", err))
		default:
			if desc = e.processor.CleanDescription(desc); desc != "" {
				book.Description = desc
				result.Scraped++
				filled = true
			}
		}
	}

	return filled, errors.Join(errs...)
}

func (e *Engine) applyVolume(book *models.Book, vol *googlebooks.Volume) bool {
	changed := false
	if book.Description == "" && vol.Description != "" {
		if desc := e.processor.CleanDescription(vol.Description); desc != "" {
			book.Description = desc
			changed = true
		}
	}
	if book.PublishedDate == "" && vol.PublishedDate != "" {
		book.PublishedDate = vol.PublishedDate
		changed = true
	}
	if book.Categories == "" && vol.Categories != "" {
		book.Categories = vol.Categories
		changed = true
	}
	if book.PageCount == 0 && vol.PageCount > 0 {
		book.PageCount = vol.PageCount
		changed = true
	}
	if book.AverageRating == 0 && vol.AverageRating > 0 {
		book.AverageRating = vol.AverageRating
		changed = true
	}
	return changed
}

func needsVolume(book *models.Book) bool {
	return book.Description == "" ||
		book.PublishedDate == "" ||
		book.Categories == "" ||
		book.PageCount == 0 ||
		book.AverageRating == 0
}
