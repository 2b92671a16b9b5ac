package enrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/mfenderov/bookrec/internal/googlebooks"
	"github.com/mfenderov/bookrec/internal/scraper"
	"github.com/mfenderov/bookrec/pkg/models"
)

type fakeVolumes struct {
	volumes map[string]*googlebooks.Volume
	err     error
	calls   int
}

func (f *fakeVolumes) Lookup(_ context.Context, title, _ string) (*googlebooks.Volume, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.volumes[title], nil
}

type fakePages struct {
	pages map[string]string
	err   error
}

func (f *fakePages) Description(_ context.Context, pageURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	desc, ok := f.pages[pageURL]
	if !ok {
		return "", scraper.ErrNoDescription
	}
	return desc, nil
}

func TestEngine_FillsMissingFields(t *testing.T) {
	volumes := &fakeVolumes{volumes: map[string]*googlebooks.Volume{
		"The Night Circus": {
			Description:   "<p>A <b>magical</b> competition.</p>",
			PublishedDate: "2011-09-13",
			Categories:    "Fiction, Fantasy",
			PageCount:     387,
			AverageRating: 4.0,
		},
	}}
	e := New(volumes, nil)

	books := []models.Book{{Title: "The Night Circus", Author: "Erin Morgenstern"}}
	got, result, err := e.Enrich(t.Context(), books)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	b := got[0]
	if b.Description != "A magical competition." {
		t.Errorf("Description = %q", b.Description)
	}
	if b.PublishedDate != "2011-09-13" || b.Categories != "Fiction, Fantasy" {
		t.Errorf("PublishedDate/Categories = %q/%q", b.PublishedDate, b.Categories)
	}
	if b.PageCount != 387 || b.AverageRating != 4.0 {
		t.Errorf("PageCount/AverageRating = %d/%v", b.PageCount, b.AverageRating)
	}
	if result.Filled != 1 || result.Looked != 1 {
		t.Errorf("Filled/Looked = %d/%d, want 1/1", result.Filled, result.Looked)
	}
	if books[0].Description != "" {
		t.Error("Enrich() must not modify its input")
	}
}

func TestEngine_KeepsExistingValues(t *testing.T) {
	volumes := &fakeVolumes{volumes: map[string]*googlebooks.Volume{
		"Dune": {Description: "API text", Categories: "Science Fiction", PageCount: 600},
	}}
	e := New(volumes, nil)

	books := []models.Book{{Title: "Dune", Author: "Frank Herbert", Description: "Original", PageCount: 412}}
	got, _, err := e.Enrich(t.Context(), books)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if got[0].Description != "Original" {
		t.Errorf("Description = %q, want Original", got[0].Description)
	}
	if got[0].PageCount != 412 {
		t.Errorf("PageCount = %d, want 412", got[0].PageCount)
	}
	if got[0].Categories != "Science Fiction" {
		t.Errorf("Categories = %q, want filled", got[0].Categories)
	}
}

func TestEngine_SkipsCompleteRows(t *testing.T) {
	volumes := &fakeVolumes{}
	e := New(volumes, nil)

	books := []models.Book{{
		Title: "Emma", Author: "Jane Austen", Description: "d", PublishedDate: "1815",
		Categories: "Classics", PageCount: 474, AverageRating: 4.0,
	}}
	if _, _, err := e.Enrich(t.Context(), books); err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if volumes.calls != 0 {
		t.Errorf("Lookup calls = %d, want 0", volumes.calls)
	}
}

func TestEngine_ScrapesWhenDescriptionStillMissing(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		"https://www.goodreads.com/book/show/1": "  Scraped   blurb ",
	}}
	e := New(&fakeVolumes{}, pages)

	books := []models.Book{
		{Title: "A", Author: "X", GoodreadsURL: "https://www.goodreads.com/book/show/1"},
		{Title: "B", Author: "Y", GoodreadsURL: "https://www.goodreads.com/book/show/2"},
	}
	got, result, err := e.Enrich(t.Context(), books)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if got[0].Description != "Scraped blurb" {
		t.Errorf("Description = %q, want %q", got[0].Description, "Scraped blurb")
	}
	if got[1].Description != "" {
		t.Errorf("Description = %q, want empty", got[1].Description)
	}
	if result.Scraped != 1 {
		t.Errorf("Scraped = %d, want 1", result.Scraped)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
}

func TestEngine_RecordsRowErrors(t *testing.T) {
	e := New(&fakeVolumes{err: errors.New("quota exceeded")}, &fakePages{err: errors.New("timeout")})

	books := []models.Book{
		{Title: "A", Author: "X", GoodreadsURL: "https://example.com/a"},
		{Title: "B", Author: "Y"},
	}
	got, result, err := e.Enrich(t.Context(), books)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %v, want 2 entries", result.Errors)
	}
}

func TestEngine_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(&fakeVolumes{}, nil)
	books := []models.Book{{Title: "A"}, {Title: "B"}}

	got, result, err := e.Enrich(ctx, books)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Enrich() error = %v, want context.Canceled", err)
	}
	if len(got) != 2 {
		t.Errorf("len(got) = %d, want 2", len(got))
	}
	if len(result.Errors) == 0 {
		t.Error("Errors should record the cancellation")
	}
}
