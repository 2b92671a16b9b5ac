// Package googlebooks looks up book metadata in the Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mfenderov/bookrec/pkg/models"
)

// DefaultBaseURL is the public volumes endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Config holds Google Books client configuration.
type Config struct {
	BaseURL           string
	APIKey            string  // Optional; raises the anonymous quota
	RequestsPerSecond float64 // Client-side rate limit
	Timeout           time.Duration
}

// Volume is the subset of volumeInfo used to fill catalog gaps.
type Volume struct {
	Description   string
	PublishedDate string
	Categories    string // Comma-joined
	PageCount     int
	AverageRating float64
}

// Client queries Google Books with rate limiting and a circuit breaker.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*Volume]
}

// New creates a new Google Books client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*Volume](gobreaker.Settings{
		Name:        "google-books",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		cb:         cb,
	}, nil
}

// volumesResponse represents the Google Books search response structure.
type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Description   string   `json:"description"`
			PublishedDate string   `json:"publishedDate"`
			Categories    []string `json:"categories"`
			PageCount     int      `json:"pageCount"`
			AverageRating float64  `json:"averageRating"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup searches by title and author and returns the first match.
// It returns nil, nil when the API has no matching volume.
func (c *Client) Lookup(ctx context.Context, title, author string) (*Volume, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return c.cb.Execute(func() (*Volume, error) {
		return c.lookup(ctx, title, author)
	})
}

func (c *Client) lookup(ctx context.Context, title, author string) (*Volume, error) {
	params := url.Values{}
	params.Set("q", title+" inauthor:"+author)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	slog.Debug("google books lookup", "title", title, "author", author)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var vr volumesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(vr.Items) == 0 {
		return nil, nil
	}

	info := vr.Items[0].VolumeInfo
	return &Volume{
		Description:   info.Description,
		PublishedDate: info.PublishedDate,
		Categories:    models.JoinCategories(info.Categories),
		PageCount:     info.PageCount,
		AverageRating: info.AverageRating,
	}, nil
}
