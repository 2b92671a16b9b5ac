// Package api serves recommendations over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfenderov/bookrec/internal/metrics"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/pkg/models"
)

// BookSearcher finds books by keyword.
type BookSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Book, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Addr            string
	DefaultK        int
	MaxK            int // 0 means unbounded
	ShutdownTimeout time.Duration
}

// Server serves the read-only HTTP API over one corpus.
type Server struct {
	config Config
	corpus *recommend.Corpus
	search BookSearcher // nil disables /api/v1/search
}

// New creates a new API server. search may be nil.
func New(config Config, corpus *recommend.Corpus, search BookSearcher) *Server {
	if config.DefaultK <= 0 {
		config.DefaultK = 5
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	return &Server{config: config, corpus: corpus, search: search}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommendations", s.recommendations)
		r.Get("/books/{id}", s.book)
		if s.search != nil {
			r.Get("/search", s.searchBooks)
		}
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	slog.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// instrument records request counts and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}

func (s *Server) clamp(n int) int {
	if s.config.MaxK > 0 && n > s.config.MaxK {
		return s.config.MaxK
	}
	return n
}
