package tfidf

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestFitTransformEmptyCorpus(t *testing.T) {
	_, _, err := NewVectorizer().FitTransform(nil)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("FitTransform(nil) error = %v, want ErrEmptyCorpus", err)
	}
}

func TestFitTransformUnitVectors(t *testing.T) {
	docs := []string{
		"The Night Circus Erin Morgenstern A circus appears overnight Fantasy",
		"Circus of Dreams A. Author Another circus tale Fantasy",
		"Cooking 101 Chef X A cookbook Cooking",
	}

	vocab, vectors, err := NewVectorizer().FitTransform(docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if len(vectors) != len(docs) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(docs))
	}
	if vocab.Len() == 0 {
		t.Fatal("vocabulary should not be empty")
	}
	if _, ok := vocab.Index("the"); ok {
		t.Error("stop word 'the' should not be in the vocabulary")
	}

	for i, v := range vectors {
		if math.Abs(v.Norm()-1) > 1e-9 {
			t.Errorf("vector %d norm = %f, want 1", i, v.Norm())
		}
		for _, e := range v {
			if e.Weight < 0 {
				t.Errorf("vector %d has negative weight %f", i, e.Weight)
			}
		}
	}
}

func TestFitTransformIDFWeighting(t *testing.T) {
	// "circus" is in every document, "night" in one: within doc 0 the rarer
	// term must weigh more.
	docs := []string{"circus night", "circus dreams", "circus clowns"}

	vocab, vectors, err := NewVectorizer().FitTransform(docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	circus, _ := vocab.Index("circus")
	night, _ := vocab.Index("night")

	var wCircus, wNight float64
	for _, e := range vectors[0] {
		switch e.Index {
		case circus:
			wCircus = e.Weight
		case night:
			wNight = e.Weight
		}
	}
	if wNight <= wCircus {
		t.Errorf("rare term weight %f should exceed common term weight %f", wNight, wCircus)
	}

	// Ratio follows ln((1+n)/(1+df)) + 1.
	wantRatio := (math.Log(4.0/2.0) + 1) / (math.Log(4.0/4.0) + 1)
	if math.Abs(wNight/wCircus-wantRatio) > 1e-9 {
		t.Errorf("weight ratio = %f, want %f", wNight/wCircus, wantRatio)
	}
}

func TestFitTransformEmptyDocument(t *testing.T) {
	docs := []string{"the and of", "dragons and wizards"}

	_, vectors, err := NewVectorizer().FitTransform(docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if len(vectors[0]) != 0 {
		t.Errorf("stop-word-only document should be the zero vector, got %v", vectors[0])
	}
	if len(vectors[1]) == 0 {
		t.Error("second document should have terms")
	}
}

func TestFitTransformMinDocFrequency(t *testing.T) {
	docs := []string{"dragon wizard", "dragon castle", "knight"}

	v := &Vectorizer{MinDocFrequency: 2}
	vocab, vectors, err := v.FitTransform(docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if vocab.Len() != 1 || vocab.Term(0) != "dragon" {
		t.Errorf("vocabulary = %d terms, want only 'dragon'", vocab.Len())
	}
	if len(vectors[2]) != 0 {
		t.Errorf("document with only pruned terms should be zero, got %v", vectors[2])
	}
}

func TestFitTransformIdempotent(t *testing.T) {
	docs := []string{"dragons wizards castles", "wizards school magic", "space ships"}

	_, first, err := NewVectorizer().FitTransform(docs)
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := NewVectorizer().FitTransform(docs)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("FitTransform should be deterministic for the same input")
	}
}
