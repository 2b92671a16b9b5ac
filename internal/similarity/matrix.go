package similarity

import (
	"errors"
	"fmt"
)

// ErrCorpusState reports an internal inconsistency: a matrix that does not match
// its corpus, or scores outside [0, 1] that point to a normalization bug.
var ErrCorpusState = errors.New("corpus state error")

// Tolerance is the slack allowed above 1.0 for floating-point rounding.
const Tolerance = 1e-9

// Matrix is a square, symmetric similarity matrix stored row-major.
// It is read-only once built.
type Matrix struct {
	n    int
	data []float64
}

// Size returns the number of rows (and columns).
func (m *Matrix) Size() int {
	return m.n
}

// At returns the similarity between items i and j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Row returns the scores of item i against every item. The slice aliases the
// matrix storage and must not be modified.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Validate checks the invariants of a similarity matrix: unit diagonal,
// symmetry and every score within [0, 1].
func (m *Matrix) Validate() error {
	if len(m.data) != m.n*m.n {
		return fmt.Errorf("%w: %d values for a %dx%d matrix", ErrCorpusState, len(m.data), m.n, m.n)
	}
	for i := 0; i < m.n; i++ {
		if m.At(i, i) != 1 {
			return fmt.Errorf("%w: diagonal entry %d is %v", ErrCorpusState, i, m.At(i, i))
		}
		for j := i + 1; j < m.n; j++ {
			v := m.At(i, j)
			if v != m.At(j, i) {
				return fmt.Errorf("%w: asymmetric entry (%d,%d)", ErrCorpusState, i, j)
			}
			if v < 0 || v > 1+Tolerance {
				return fmt.Errorf("%w: score %v at (%d,%d) outside [0,1]", ErrCorpusState, v, i, j)
			}
		}
	}
	return nil
}
