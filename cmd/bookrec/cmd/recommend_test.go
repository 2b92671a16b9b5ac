package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mfenderov/bookrec/internal/config"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/pkg/models"
)

func testCorpus(t *testing.T) *recommend.Corpus {
	t.Helper()
	books := []models.Book{
		{Title: "The Night Circus", Author: "Erin Morgenstern", Description: "A magical competition between two young illusionists.", Categories: "Fantasy"},
		{Title: "The Magicians", Author: "Lev Grossman", Description: "A young student discovers a school of magic.", Categories: "Fantasy"},
		{Title: "Dune", Author: "Frank Herbert", Description: "A desert planet and the spice melange.", Categories: "Science Fiction"},
	}
	corpus, _, err := recommend.Build(books, recommend.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return corpus
}

func TestRecommendOnce_Text(t *testing.T) {
	var out bytes.Buffer
	if err := recommendOnce(&out, testCorpus(t), "the night circus", 1, false); err != nil {
		t.Fatalf("recommendOnce() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Because you liked 'The Night Circus' by Erin Morgenstern, you might also like:") {
		t.Errorf("missing header in %q", got)
	}
	if !strings.Contains(got, "- The Magicians by Lev Grossman (Similarity Score: ") {
		t.Errorf("missing recommendation in %q", got)
	}
	if strings.Contains(got, "Dune") {
		t.Errorf("k=1 should list one book, got %q", got)
	}
}

func TestRecommendOnce_NotFound(t *testing.T) {
	var out bytes.Buffer
	if err := recommendOnce(&out, testCorpus(t), "Missing Book", 3, false); err != nil {
		t.Fatalf("recommendOnce() error = %v", err)
	}
	if !strings.Contains(out.String(), `Sorry, the book "Missing Book" was not found`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestRecommendOnce_InvalidK(t *testing.T) {
	var out bytes.Buffer
	err := recommendOnce(&out, testCorpus(t), "Dune", 0, false)
	if !errors.Is(err, recommend.ErrInvalidArgument) {
		t.Errorf("recommendOnce() error = %v, want ErrInvalidArgument", err)
	}
}

func TestRecommendOnce_JSON(t *testing.T) {
	var out bytes.Buffer
	if err := recommendOnce(&out, testCorpus(t), "Dune", 2, true); err != nil {
		t.Fatalf("recommendOnce() error = %v", err)
	}
	if !strings.Contains(out.String(), `"recommendations"`) || !strings.Contains(out.String(), `"score"`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrompt(t *testing.T) {
	in := strings.NewReader("Dune\n\nunknown title\nEXIT\nThe Magicians\n")
	var out bytes.Buffer

	if err := prompt(t.Context(), in, &out, testCorpus(t), 2); err != nil {
		t.Fatalf("prompt() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Because you liked 'Dune'") {
		t.Error("prompt should answer the first title")
	}
	if !strings.Contains(got, `"unknown title" was not found`) {
		t.Error("prompt should report unknown titles and continue")
	}
	if !strings.Contains(got, "Goodbye!") {
		t.Error("prompt should stop on exit")
	}
	if strings.Contains(got, "Because you liked 'The Magicians'") {
		t.Error("prompt should not read past exit")
	}
}

func TestPrompt_EOF(t *testing.T) {
	var out bytes.Buffer
	if err := prompt(t.Context(), strings.NewReader("Dune"), &out, testCorpus(t), 1); err != nil {
		t.Fatalf("prompt() error = %v", err)
	}
}

func TestBuildOptions(t *testing.T) {
	cfg := config.Defaults()
	opts := buildOptions(cfg)
	if opts.StopWords != nil {
		t.Error("no extra stop words should keep the default list")
	}
	if opts.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", opts.Workers)
	}

	cfg.Vectorizer.StopWords = []string{" Novel "}
	opts = buildOptions(cfg)
	if _, ok := opts.StopWords["novel"]; !ok {
		t.Error("extra stop words should be normalized and added")
	}
	if _, ok := opts.StopWords["the"]; !ok {
		t.Error("extra stop words should extend the English list")
	}
}

func TestResolveK(t *testing.T) {
	tests := []struct {
		name      string
		set       bool
		flagValue int
		want      int
	}{
		{"unset uses default", false, 0, 5},
		{"explicit value", true, 3, 3},
		{"explicit zero is kept", true, 0, 0},
		{"explicit negative is kept", true, -2, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveK(tt.set, tt.flagValue, 5); got != tt.want {
				t.Errorf("resolveK() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecommendCommand_ExplicitZeroK(t *testing.T) {
	cmd := &cobra.Command{}
	var k int
	cmd.Flags().IntVarP(&k, "k", "k", 0, "")
	if err := cmd.Flags().Parse([]string{"-k", "0"}); err != nil {
		t.Fatal(err)
	}

	k = resolveK(cmd.Flags().Changed("k"), k, 5)
	var out bytes.Buffer
	err := recommendOnce(&out, testCorpus(t), "Dune", k, false)
	if !errors.Is(err, recommend.ErrInvalidArgument) {
		t.Errorf("recommendOnce() error = %v, want ErrInvalidArgument", err)
	}
}
