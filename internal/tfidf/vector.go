package tfidf

import (
	"math"
	"sort"
)

// Entry is a single non-zero component of a sparse vector.
type Entry struct {
	Index  int     // Column in the Vocabulary
	Weight float64 // Always non-negative
}

// Vector is a sparse TF-IDF vector, always sorted by Index for merge-join operations.
// An empty Vector is the all-zero vector.
type Vector []Entry

// newVector builds a sorted Vector from a column-weight map.
func newVector(weights map[int]float64) Vector {
	if len(weights) == 0 {
		return nil
	}
	v := make(Vector, 0, len(weights))
	for idx, w := range weights {
		v = append(v, Entry{Index: idx, Weight: w})
	}
	sort.Slice(v, func(i, j int) bool {
		return v[i].Index < v[j].Index
	})
	return v
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

// normalize scales v in place to unit length. The zero vector is left untouched.
func (v Vector) normalize() {
	n := v.Norm()
	if n == 0 {
		return
	}
	for i := range v {
		v[i].Weight /= n
	}
}

// Dot computes the dot product of two sorted sparse vectors using a merge-join.
// Zero allocations, O(n+m) time. For unit vectors this is the cosine similarity.
func Dot(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	return dot
}
