package catalog

import (
	"log/slog"
	"strings"

	"github.com/mfenderov/bookrec/pkg/models"
)

// CleanReport summarizes what Clean removed.
type CleanReport struct {
	Input           int
	Duplicates      int // Exact duplicate rows
	MissingRequired int // Rows without title, author or description
	Output          int
}

// Clean prepares raw collected rows for vectorization:
//   - text fields are trimmed and placeholder values ("nan", "None") cleared
//   - list-formatted categories ("['A', 'B']") become "A, B"
//   - exact duplicate rows are dropped, keeping the first
//   - rows missing title, author or description are dropped
//
// IDs are renumbered to the output positions.
func Clean(books []models.Book) ([]models.Book, CleanReport) {
	report := CleanReport{Input: len(books)}
	seen := make(map[models.Book]bool, len(books))
	out := make([]models.Book, 0, len(books))

	for _, b := range books {
		b.ID = 0
		b.Title = cleanText(b.Title)
		b.Author = cleanText(b.Author)
		b.Description = cleanText(b.Description)
		b.Categories = NormalizeCategories(cleanText(b.Categories))
		b.PublishedDate = cleanText(b.PublishedDate)
		b.GoodreadsURL = cleanText(b.GoodreadsURL)
		if b.PageCount < 0 {
			b.PageCount = 0
		}
		if b.AverageRating < 0 || isNaN(b.AverageRating) {
			b.AverageRating = 0
		}

		if seen[b] {
			report.Duplicates++
			continue
		}
		seen[b] = true

		if b.Title == "" || b.Author == "" || b.Description == "" {
			report.MissingRequired++
			continue
		}

		b.ID = len(out)
		out = append(out, b)
	}

	report.Output = len(out)
	slog.Info("catalog cleaned",
		"input", report.Input,
		"duplicates", report.Duplicates,
		"missing_required", report.MissingRequired,
		"output", report.Output)

	return out, report
}

// NormalizeCategories turns a list-formatted value such as "['Fiction', 'Fantasy']"
// into "Fiction, Fantasy". Plain strings are returned trimmed.
func NormalizeCategories(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return s
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	var parts []string
	for _, p := range strings.Split(inner, ",") {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `'"`)
		parts = append(parts, p)
	}
	return models.JoinCategories(parts)
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}
