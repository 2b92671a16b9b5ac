package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mfenderov/bookrec/internal/metrics"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/pkg/models"
)

// RecommendationsResponse is the body of GET /api/v1/recommendations.
type RecommendationsResponse struct {
	Query           models.Book             `json:"query"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"books":  s.corpus.Len(),
	})
}

// recommendations handles GET /api/v1/recommendations?title=...&k=...
func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	k := s.config.DefaultK
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "k must be an integer")
			return
		}
		k = parsed
	}
	k = s.clamp(k)

	recs, err := s.corpus.Recommend(title, k)
	metrics.ObserveRecommendation("http", err)
	switch {
	case errors.Is(err, recommend.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, recommend.ErrNotFound):
		writeError(w, http.StatusNotFound, "book not found")
		return
	case err != nil:
		slog.Error("recommendation failed", "title", title, "error", err)
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}

	// Recommend succeeded, so the lookup cannot fail.
	query, _ := s.corpus.Lookup(title)
	writeJSON(w, http.StatusOK, RecommendationsResponse{Query: query, Recommendations: recs})
}

// book handles GET /api/v1/books/{id}
func (s *Server) book(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, ok := s.corpus.Book(id)
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// searchBooks handles GET /api/v1/search?q=...&limit=...
func (s *Server) searchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := 10
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		parsed, err := strconv.Atoi(lStr)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	books, err := s.search.Search(r.Context(), q, s.clamp(limit))
	if err != nil {
		slog.Error("search failed", "query", q, "error", err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, books)
}
