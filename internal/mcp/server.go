// Package mcp exposes the recommender as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfenderov/bookrec/internal/metrics"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/pkg/models"
)

// BookSearcher finds books by keyword.
type BookSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Book, error)
}

// Config holds MCP server configuration.
type Config struct {
	Name     string
	Version  string
	DefaultK int // Used when recommend_books is called without k
	MaxK     int // Upper bound for k and limit; 0 means unbounded
}

// Server wraps the MCP server around a loaded corpus.
type Server struct {
	mcpServer *server.MCPServer
	corpus    *recommend.Corpus
	search    BookSearcher // nil if search is not configured
	config    Config
}

// NewServer creates a new MCP server with recommendation tools. search may
// be nil, in which case search_books is not registered.
func NewServer(config Config, corpus *recommend.Corpus, search BookSearcher) (*Server, error) {
	if corpus == nil {
		return nil, fmt.Errorf("corpus is required")
	}
	if config.DefaultK <= 0 {
		config.DefaultK = 5
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		corpus:    corpus,
		search:    search,
		config:    config,
	}

	recommendTool := mcp.NewTool("recommend_books",
		mcp.WithDescription("Recommend books similar to a title from the catalog, ranked by content similarity. The title must match a catalog title exactly (case-insensitive); use search_books to find it."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Exact title of a book the reader liked"),
		),
		mcp.WithNumber("k",
			mcp.Description(fmt.Sprintf("Number of recommendations to return (default: %d)", config.DefaultK)),
		),
	)
	mcpServer.AddTool(recommendTool, s.recommendHandler)

	getBookTool := mcp.NewTool("get_book",
		mcp.WithDescription("Get a catalog book by its numeric ID"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Book ID (catalog position)"),
		),
	)
	mcpServer.AddTool(getBookTool, s.getBookHandler)

	if search != nil {
		searchTool := mcp.NewTool("search_books",
			mcp.WithDescription("Search the catalog by keywords in title, author, description and categories. Use it to find exact titles."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query string"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results to return (default: 10)"),
			),
		)
		mcpServer.AddTool(searchTool, s.searchHandler)
	}

	return s, nil
}

// recommendHandler handles the recommend_books tool call.
func (s *Server) recommendHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title parameter is required"), nil
	}

	k := s.clamp(req.GetInt("k", s.config.DefaultK))

	recs, err := s.corpus.Recommend(title, k)
	metrics.ObserveRecommendation("mcp", err)
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("book not found: %q", title)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("recommend failed: %v", err)), nil
	}

	return jsonResult(recs)
}

// getBookHandler handles the get_book tool call.
func (s *Server) getBookHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	book, ok := s.corpus.Book(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("book not found: %d", id)), nil
	}

	return jsonResult(book)
}

// searchHandler handles the search_books tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := s.clamp(req.GetInt("limit", 10))

	books, err := s.search.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return jsonResult(books)
}

func (s *Server) clamp(n int) int {
	if s.config.MaxK > 0 && n > s.config.MaxK {
		return s.config.MaxK
	}
	return n
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
