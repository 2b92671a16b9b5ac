package models

import "strings"

// Book represents one catalog entry.
type Book struct {
	ID            int     `json:"id"` // Position in the loaded catalog, assigned at load time
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Description   string  `json:"description"`
	Categories    string  `json:"categories"` // Comma-joined
	PublishedDate string  `json:"published_date,omitempty"`
	PageCount     int     `json:"page_count,omitempty"`
	AverageRating float64 `json:"average_rating,omitempty"`
	GoodreadsURL  string  `json:"goodreads_url,omitempty"`
}

// CombinedText joins the text fields used for vectorization with single spaces.
// It is always derived from the source fields and never stored.
func (b Book) CombinedText() string {
	return strings.Join([]string{b.Title, b.Author, b.Description, b.Categories}, " ")
}

// Recommendation pairs a book with its similarity to the queried title.
type Recommendation struct {
	Book  Book    `json:"book"`
	Score float64 `json:"score"`
}

// JoinCategories flattens a category list into the single string form used by Book.
func JoinCategories(categories []string) string {
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ", ")
}
