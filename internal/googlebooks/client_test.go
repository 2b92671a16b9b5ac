package googlebooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Config{
		BaseURL:           server.URL,
		APIKey:            "test-key",
		RequestsPerSecond: 1000,
		Timeout:           5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestLookup(t *testing.T) {
	var gotQuery, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"volumeInfo": {
					"description": "The circus arrives without warning.",
					"publishedDate": "2011-09-13",
					"categories": ["Fiction", "Fantasy"],
					"pageCount": 387,
					"averageRating": 4
				}},
				{"volumeInfo": {"description": "second hit ignored"}}
			]
		}`))
	})

	v, err := c.Lookup(context.Background(), "The Night Circus", "Erin Morgenstern")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if gotQuery != "The Night Circus inauthor:Erin Morgenstern" {
		t.Errorf("q = %q", gotQuery)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want test-key", gotKey)
	}

	want := Volume{
		Description:   "The circus arrives without warning.",
		PublishedDate: "2011-09-13",
		Categories:    "Fiction, Fantasy",
		PageCount:     387,
		AverageRating: 4,
	}
	if v == nil || *v != want {
		t.Errorf("Lookup() = %+v, want %+v", v, want)
	}
}

func TestLookupNoItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	})

	v, err := c.Lookup(context.Background(), "Unknown", "Nobody")
	if err != nil || v != nil {
		t.Errorf("Lookup() = %+v, %v; want nil, nil", v, err)
	}
}

func TestLookupServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	if _, err := c.Lookup(context.Background(), "Dune", "Frank Herbert"); err == nil {
		t.Error("Lookup() should fail on non-200 status")
	}
}

func TestLookupCircuitOpens(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		c.Lookup(ctx, "Dune", "Frank Herbert")
	}

	_, err := c.Lookup(ctx, "Dune", "Frank Herbert")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Lookup() error = %v, want ErrOpenState", err)
	}
	if n := calls.Load(); n != 5 {
		t.Errorf("server called %d times, want 5", n)
	}
}

func TestLookupContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Lookup(ctx, "Dune", "Frank Herbert"); err == nil {
		t.Error("Lookup() should fail with a cancelled context")
	}
}
