package config

import "time"

// Config holds all application configuration.
type Config struct {
	Catalog       Catalog       `mapstructure:"catalog"`
	Vectorizer    Vectorizer    `mapstructure:"vectorizer"`
	Recommender   Recommender   `mapstructure:"recommender"`
	GoogleBooks   GoogleBooks   `mapstructure:"googlebooks"`
	Scraper       Scraper       `mapstructure:"scraper"`
	Storage       Storage       `mapstructure:"storage"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	MCP           MCP           `mapstructure:"mcp"`
	HTTP          HTTP          `mapstructure:"http"`
}

// Catalog holds the local data file locations.
type Catalog struct {
	RawPath     string `mapstructure:"raw_path"`     // Output of collect
	CleanedPath string `mapstructure:"cleaned_path"` // Output of clean, input of build
	MatrixPath  string `mapstructure:"matrix_path"`
}

// Vectorizer holds TF-IDF options.
type Vectorizer struct {
	StopWords       []string `mapstructure:"stop_words"` // Added to the English list
	MinDocFrequency int      `mapstructure:"min_doc_frequency"`
}

// Recommender holds query and build options.
type Recommender struct {
	DefaultK int `mapstructure:"default_k"`
	MaxK     int `mapstructure:"max_k"`
	Workers  int `mapstructure:"workers"` // 0 uses GOMAXPROCS
}

// GoogleBooks holds volumes API configuration.
type GoogleBooks struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// Scraper holds Goodreads scraping configuration.
type Scraper struct {
	Enabled   bool          `mapstructure:"enabled"`
	Delay     time.Duration `mapstructure:"delay"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Storage holds S3/MinIO storage configuration.
type Storage struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// HTTP holds HTTP API configuration.
type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Catalog: Catalog{
			RawPath:     "data/books_dataset.csv",
			CleanedPath: "data/books_cleaned.csv",
			MatrixPath:  "data/similarity.bin",
		},
		Vectorizer: Vectorizer{
			MinDocFrequency: 1,
		},
		Recommender: Recommender{
			DefaultK: 5,
			MaxK:     50,
		},
		GoogleBooks: GoogleBooks{
			Enabled:           true,
			BaseURL:           "https://www.googleapis.com/books/v1/volumes",
			RequestsPerSecond: 1,
			Timeout:           15 * time.Second,
		},
		Scraper: Scraper{
			Enabled:   false, // Goodreads pages are only fetched when asked for
			Delay:     1 * time.Second,
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0",
		},
		Storage: Storage{
			Enabled:         false,
			Endpoint:        "localhost:9002",
			Bucket:          "bookrec",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Elasticsearch: Elasticsearch{
			Enabled:   false,
			Addresses: []string{"http://localhost:9200"},
			Index:     "bookrec-books",
		},
		MCP: MCP{
			Name:    "bookrec",
			Version: "1.0.0",
		},
		HTTP: HTTP{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// StopWordSet returns the configured extra stop words as a set.
func (v Vectorizer) StopWordSet() map[string]struct{} {
	if len(v.StopWords) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		set[w] = struct{}{}
	}
	return set
}
