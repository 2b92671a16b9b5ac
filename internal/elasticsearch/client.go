// Package elasticsearch indexes the catalog for keyword search so users can
// discover exact titles before asking for recommendations.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/mfenderov/bookrec/pkg/models"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Client wraps the Elasticsearch client with catalog operations.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	if config.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Client{
		es:    es,
		index: config.Index,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping defines the ES index mapping for books.
// title.raw supports exact, case-insensitive title matches.
var indexMapping = `{
	"settings": {
		"analysis": {
			"normalizer": {
				"lowercase_trim": { "type": "custom", "filter": ["lowercase", "trim"] }
			}
		}
	},
	"mappings": {
		"properties": {
			"id": { "type": "integer" },
			"title": {
				"type": "text",
				"fields": { "raw": { "type": "keyword", "normalizer": "lowercase_trim" } }
			},
			"author": { "type": "text" },
			"description": { "type": "text", "analyzer": "english" },
			"categories": { "type": "text" },
			"published_date": { "type": "keyword" },
			"page_count": { "type": "integer" },
			"average_rating": { "type": "float" },
			"goodreads_url": { "type": "keyword", "index": false }
		}
	}
}`

// CreateIndex creates the index with proper mapping.
func (c *Client) CreateIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// DeleteIndex removes the index. Build pipelines call it before a full
// reindex so positions from an older catalog never linger.
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete(
		[]string{c.index},
		c.es.Indices.Delete.WithContext(ctx),
		c.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error deleting index: %s", res.String())
	}
	return nil
}

// IndexBook indexes a single book under its position.
func (c *Client) IndexBook(ctx context.Context, book models.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to marshal book: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(strconv.Itoa(book.ID)),
	)
	if err != nil {
		return fmt.Errorf("failed to index book: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing book (status %d): %s", res.StatusCode, res.String())
	}

	return nil
}

// IndexBooks bulk-indexes books and returns how many were stored.
func (c *Client) IndexBooks(ctx context.Context, books []models.Book) (int, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: c.es,
		Index:  c.index,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for _, book := range books {
		data, err := json.Marshal(book)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal book: %w", err)
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.Itoa(book.ID),
			Body:       bytes.NewReader(data),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					slog.Error("failed to index book", "id", item.DocumentID, "error", err)
					return
				}
				slog.Error("failed to index book", "id", item.DocumentID, "type", res.Error.Type, "reason", res.Error.Reason)
			},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to queue book: %w", err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, fmt.Errorf("bulk indexing failed: %w", err)
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return int(stats.NumFlushed), fmt.Errorf("bulk indexing: %d of %d books failed", stats.NumFailed, len(books))
	}
	return int(stats.NumFlushed), nil
}

// Refresh forces an index refresh so new books are searchable immediately.
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Book `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search performs a BM25 text search over title, author, description and
// categories. Exact title matches rank first.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  query,
							"fields": []string{"title^3", "author^2", "description", "categories"},
						},
					},
					{
						"term": map[string]interface{}{
							"title.raw": map[string]interface{}{"value": query, "boost": 10},
						},
					},
				},
			},
		},
		"size": limit,
	}

	data, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	books := make([]models.Book, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		books[i] = hit.Source
	}

	return books, nil
}

// getResponse represents ES get response structure.
type getResponse struct {
	Found  bool        `json:"found"`
	Source models.Book `json:"_source"`
}

// GetBook retrieves a book by position. It returns nil, nil when absent.
func (c *Client) GetBook(ctx context.Context, id int) (*models.Book, error) {
	res, err := c.es.Get(
		c.index,
		strconv.Itoa(id),
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}

	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !gr.Found {
		return nil, nil
	}

	return &gr.Source, nil
}
