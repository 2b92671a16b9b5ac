package similarity

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mfenderov/bookrec/internal/tfidf"
)

type options struct {
	workers int
}

// Option configures Compute.
type Option func(*options)

// WithWorkers spreads row computation across n goroutines.
// The result is identical to the sequential computation.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Compute builds the full pairwise cosine similarity matrix of unit-normalized
// vectors. Only the upper triangle is computed; it is mirrored into the lower
// one and the diagonal is fixed at 1.0.
func Compute(vectors []tfidf.Vector, opts ...Option) (*Matrix, error) {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	start := time.Now()
	n := len(vectors)
	m := &Matrix{n: n, data: make([]float64, n*n)}

	// Each row writes only its own upper-triangle cells and their mirrors,
	// which no other row touches.
	fillRow := func(i int) {
		m.data[i*n+i] = 1
		for j := i + 1; j < n; j++ {
			v := tfidf.Dot(vectors[i], vectors[j])
			m.data[i*n+j] = v
			m.data[j*n+i] = v
		}
	}

	if o.workers == 1 || n < 2 {
		for i := 0; i < n; i++ {
			fillRow(i)
		}
	} else {
		rows := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < o.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range rows {
					fillRow(i)
				}
			}()
		}
		for i := 0; i < n; i++ {
			rows <- i
		}
		close(rows)
		wg.Wait()
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("similarity matrix invalid: %w", err)
	}

	slog.Debug("similarity matrix computed",
		"items", n,
		"workers", o.workers,
		"duration", time.Since(start))

	return m, nil
}
