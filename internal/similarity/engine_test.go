package similarity

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/mfenderov/bookrec/internal/tfidf"
)

func vectorize(t *testing.T, docs []string) []tfidf.Vector {
	t.Helper()
	_, vectors, err := tfidf.NewVectorizer().FitTransform(docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	return vectors
}

var sampleDocs = []string{
	"The Night Circus Erin Morgenstern A circus appears overnight Fantasy",
	"Circus of Dreams A. Author Another circus tale Fantasy",
	"Cooking 101 Chef X A cookbook Cooking",
	"the and of",
	"Dragons of the north fantasy epic with dragons",
}

func TestComputeProperties(t *testing.T) {
	m, err := Compute(vectorize(t, sampleDocs))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if m.Size() != len(sampleDocs) {
		t.Fatalf("Size() = %d, want %d", m.Size(), len(sampleDocs))
	}

	for i := 0; i < m.Size(); i++ {
		if math.Abs(m.At(i, i)-1) > 1e-6 {
			t.Errorf("diagonal (%d,%d) = %f, want 1", i, i, m.At(i, i))
		}
		for j := 0; j < m.Size(); j++ {
			v := m.At(i, j)
			if v != m.At(j, i) {
				t.Errorf("asymmetric at (%d,%d): %f vs %f", i, j, v, m.At(j, i))
			}
			if v < 0 || v > 1+Tolerance {
				t.Errorf("score (%d,%d) = %f outside [0,1]", i, j, v)
			}
		}
	}
}

func TestComputeRelatedItems(t *testing.T) {
	m, err := Compute(vectorize(t, sampleDocs))
	if err != nil {
		t.Fatal(err)
	}
	if m.At(0, 1) <= m.At(0, 2) {
		t.Errorf("circus books (%f) should be closer than circus vs cooking (%f)", m.At(0, 1), m.At(0, 2))
	}
	if m.At(0, 2) != 0 {
		t.Errorf("no shared terms should score 0, got %f", m.At(0, 2))
	}
}

func TestComputeZeroVector(t *testing.T) {
	m, err := Compute(vectorize(t, sampleDocs))
	if err != nil {
		t.Fatal(err)
	}
	// Document 3 is stop words only.
	for j := 0; j < m.Size(); j++ {
		if j == 3 {
			continue
		}
		if m.At(3, j) != 0 {
			t.Errorf("zero vector similarity to %d = %f, want 0", j, m.At(3, j))
		}
	}
	if m.At(3, 3) != 1 {
		t.Errorf("self-similarity of zero vector = %f, want 1", m.At(3, 3))
	}
}

func TestComputeIdenticalText(t *testing.T) {
	docs := []string{
		"Dune Frank Herbert desert planet spice Science Fiction",
		"Dune Frank Herbert desert planet spice Science Fiction",
		"Emma Jane Austen matchmaking Romance",
	}
	m, err := Compute(vectorize(t, docs))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.At(0, 1)-1) > 1e-6 {
		t.Errorf("identical documents similarity = %f, want 1", m.At(0, 1))
	}
}

func TestComputeParallelMatchesSequential(t *testing.T) {
	var docs []string
	for i := 0; i < 40; i++ {
		docs = append(docs, fmt.Sprintf("book %d about dragons castle%d wizard%d", i, i%7, i%3))
	}
	vectors := vectorize(t, docs)

	seq, err := Compute(vectors)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 4, 16} {
		par, err := Compute(vectors, WithWorkers(workers))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(seq.data, par.data) {
			t.Errorf("workers=%d: parallel result differs from sequential", workers)
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	m, err := Compute(nil)
	if err != nil {
		t.Fatalf("Compute(nil) error = %v", err)
	}
	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0", m.Size())
	}
}

func TestComputeRejectsUnnormalized(t *testing.T) {
	vectors := []tfidf.Vector{
		{{Index: 0, Weight: 3}},
		{{Index: 0, Weight: 4}},
	}
	_, err := Compute(vectors)
	if !errors.Is(err, ErrCorpusState) {
		t.Errorf("Compute() error = %v, want ErrCorpusState", err)
	}
}

func TestRow(t *testing.T) {
	m := &Matrix{n: 2, data: []float64{1, 0.5, 0.5, 1}}
	row := m.Row(1)
	if len(row) != 2 || row[0] != 0.5 || row[1] != 1 {
		t.Errorf("Row(1) = %v, want [0.5 1]", row)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       *Matrix
		wantErr bool
	}{
		{"valid", &Matrix{n: 2, data: []float64{1, 0.3, 0.3, 1}}, false},
		{"bad diagonal", &Matrix{n: 2, data: []float64{0.9, 0.3, 0.3, 1}}, true},
		{"asymmetric", &Matrix{n: 2, data: []float64{1, 0.3, 0.4, 1}}, true},
		{"negative", &Matrix{n: 2, data: []float64{1, -0.1, -0.1, 1}}, true},
		{"above one", &Matrix{n: 2, data: []float64{1, 1.5, 1.5, 1}}, true},
		{"short data", &Matrix{n: 2, data: []float64{1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrCorpusState) {
				t.Errorf("Validate() error = %v, want ErrCorpusState", err)
			}
		})
	}
}
