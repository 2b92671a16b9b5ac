package titleindex

import (
	"errors"
	"testing"

	"github.com/mfenderov/bookrec/pkg/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"The Night Circus", "the night circus"},
		{"  Dune \n", "dune"},
		{"Café Society", "café society"},
		{"Catch-22", "catch-22"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	idx := Build([]models.Book{
		{Title: "The Night Circus"},
		{Title: "Circus of Dreams"},
		{Title: "Cooking 101"},
	})

	tests := []struct {
		name    string
		title   string
		want    int
		wantErr error
	}{
		{"exact", "Circus of Dreams", 1, nil},
		{"case and space insensitive", "  the night circus ", 0, nil},
		{"missing", "nonexistent title", 0, ErrNotFound},
		{"no punctuation folding", "cooking-101", 0, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Lookup(tt.title)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Lookup(%q) error = %v, want %v", tt.title, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Lookup(%q) = %d, want %d", tt.title, got, tt.want)
			}
		})
	}
}

func TestBuildFirstSeenWins(t *testing.T) {
	idx := Build([]models.Book{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Emma"},
		{Title: "DUNE ", Author: "Other Edition"},
	})

	pos, err := idx.Lookup("dune")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if pos != 0 {
		t.Errorf("Lookup(dune) = %d, want 0 (first seen)", pos)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
}
