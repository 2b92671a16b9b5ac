package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// ErrNoDescription is returned when the page has no description block.
var ErrNoDescription = errors.New("no description found")

// Config holds scraper configuration.
type Config struct {
	Delay     time.Duration
	UserAgent string
	Timeout   time.Duration
}

// Scraper fetches book descriptions from Goodreads book pages.
type Scraper struct {
	config    Config
	collector *colly.Collector
}

// New creates a new Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0"
	}

	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       config.Delay,
		Parallelism: 1,
	})
	c.SetRequestTimeout(config.Timeout)

	return &Scraper{
		config:    config,
		collector: c,
	}
}

// Description returns the text of the last span inside div#description,
// which holds the full (unexpanded) blurb on Goodreads book pages.
func (s *Scraper) Description(ctx context.Context, pageURL string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	// Clones share the HTTP backend and its rate limits but not callbacks.
	c := s.collector.Clone()

	var description string
	var found bool
	var visitErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("scrape cancelled", "url", r.URL.String())
			r.Abort()
		}
	})

	c.OnHTML("div#description", func(e *colly.HTMLElement) {
		found = true
		e.ForEach("span", func(_ int, span *colly.HTMLElement) {
			description = strings.TrimSpace(span.Text)
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("fetch %s (status %d): %w", r.Request.URL, r.StatusCode, err)
	})

	slog.Debug("scraping description", "url", pageURL)

	if err := c.Visit(pageURL); err != nil && visitErr == nil {
		visitErr = err
	}
	c.Wait()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if visitErr != nil {
		return "", visitErr
	}
	if !found || description == "" {
		return "", ErrNoDescription
	}
	return description, nil
}
