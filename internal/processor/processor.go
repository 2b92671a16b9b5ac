package processor

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var (
	tagPattern      = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	linkPattern     = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	emphasisPattern = regexp.MustCompile(`\*\*|__|\*|(^|\s)_|_($|\s)`)
	headingPattern  = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	bulletPattern   = regexp.MustCompile(`(?m)^\s*[-+]\s+`)
)

// Processor turns book descriptions from external sources into plain text.
type Processor struct{}

// New creates a new description processor.
func New() *Processor {
	return &Processor{}
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(markdown), nil
}

// CleanDescription returns description as single-line plain text. HTML input
// (as returned by Google Books) goes through Markdown first so entities and
// line breaks are resolved, then the Markdown syntax is stripped.
func (p *Processor) CleanDescription(description string) string {
	if !LooksLikeHTML(description) {
		return collapseSpace(description)
	}

	markdown, err := p.Convert(description)
	if err != nil {
		return p.PlainText(description)
	}

	markdown = linkPattern.ReplaceAllString(markdown, "$1")
	markdown = headingPattern.ReplaceAllString(markdown, "")
	markdown = bulletPattern.ReplaceAllString(markdown, "")
	markdown = emphasisPattern.ReplaceAllString(markdown, "$1$2")
	return collapseSpace(markdown)
}

// PlainText extracts the text nodes of an HTML fragment, skipping script and style.
func (p *Processor) PlainText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return collapseSpace(tagPattern.ReplaceAllString(htmlContent, " "))
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseSpace(sb.String())
}

// LooksLikeHTML reports whether s contains markup tags.
func LooksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
