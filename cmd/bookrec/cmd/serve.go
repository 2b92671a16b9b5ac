package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/bookrec/internal/api"
	"github.com/mfenderov/bookrec/internal/mcp"
	"github.com/mfenderov/bookrec/internal/metrics"
)

var (
	serveHTTP     bool
	serveAddr     string
	serveSnapshot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over MCP or HTTP",
	Long: `Load the corpus once and serve read-only recommendation queries.

By default the MCP server communicates via stdio and provides these tools:
  - recommend_books: books similar to a title
  - get_book: a catalog book by ID
  - search_books: keyword search (when Elasticsearch is enabled)

With --http a JSON API is served instead:
  GET /api/v1/recommendations?title=...&k=...
  GET /api/v1/books/{id}
  GET /api/v1/search?q=...   (when Elasticsearch is enabled)
  GET /healthz
  GET /metrics

Examples:
  bookrec serve
  bookrec serve --http --addr :8080 --snapshot latest`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve the HTTP API instead of MCP stdio")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default http.addr)")
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "", "load a published snapshot prefix, or 'latest', instead of local files")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	corpus, err := loadCorpus(ctx, cfg, serveSnapshot)
	if err != nil {
		return err
	}
	metrics.CorpusBooks.Set(float64(corpus.Len()))
	slog.Info("corpus ready", "books", corpus.Len())

	var search mcp.BookSearcher
	if cfg.Elasticsearch.Enabled {
		client, err := newESClient(cfg.Elasticsearch)
		if err != nil {
			return err
		}
		search = client
	}

	if serveHTTP {
		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTP.Addr
		}
		server := api.New(api.Config{
			Addr:            addr,
			DefaultK:        cfg.Recommender.DefaultK,
			MaxK:            cfg.Recommender.MaxK,
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		}, corpus, search)

		fmt.Fprintf(cmd.ErrOrStderr(), "Starting HTTP server on %s...\n", addr)
		return server.ListenAndServe(ctx)
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:     cfg.MCP.Name,
		Version:  cfg.MCP.Version,
		DefaultK: cfg.Recommender.DefaultK,
		MaxK:     cfg.Recommender.MaxK,
	}, corpus, search)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
