package text

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(EnglishStopWords())

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "stop words only",
			input: "The and of a",
			want:  nil,
		},
		{
			name:  "lowercased and split on punctuation",
			input: "The Night Circus: a circus appears overnight...",
			want:  []string{"night", "circus", "circus", "appears", "overnight"},
		},
		{
			name:  "digits kept",
			input: "Cooking 101",
			want:  []string{"cooking", "101"},
		},
		{
			name:  "single characters dropped",
			input: "Chef X, A. Author",
			want:  []string{"chef", "author"},
		},
		{
			name:  "hyphens split",
			input: "science-fiction",
			want:  []string{"science", "fiction"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q)\n  got  %v\n  want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeNoStopWords(t *testing.T) {
	got := NewTokenizer(nil).Tokenize("The Hobbit")
	want := []string{"the", "hobbit"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestEnglishStopWordsIsCopy(t *testing.T) {
	a := EnglishStopWords()
	a["hobbit"] = struct{}{}

	if _, ok := EnglishStopWords()["hobbit"]; ok {
		t.Error("EnglishStopWords should return an independent copy")
	}
}

func TestTermCounts(t *testing.T) {
	counts := TermCounts([]string{"circus", "night", "circus"})
	if counts["circus"] != 2 {
		t.Errorf("counts[circus] = %d, want 2", counts["circus"])
	}
	if counts["night"] != 1 {
		t.Errorf("counts[night] = %d, want 1", counts["night"])
	}
	if len(TermCounts(nil)) != 0 {
		t.Error("TermCounts(nil) should be empty")
	}
}
