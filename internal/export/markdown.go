// Package export converts rendered pages into downloadable documents.
// Both formats start from the block markup the renderer produces.
package export

import (
	"fmt"
	"html"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"blockdocs/internal/models"
)

// Markdown converts a page and its rendered block markup to Markdown.
func Markdown(p *models.Page, body string) (string, error) {
	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(p.Title) + "</h1>")
	if p.Description != nil && *p.Description != "" {
		b.WriteString("<p><em>" + html.EscapeString(*p.Description) + "</em></p>")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing page markup: %w", err)
	}
	doc.Find("script, style, .code-lang, .alert-icon").Remove()
	clean, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("parsing page markup: %w", err)
	}
	b.WriteString(clean)

	markdown, err := htmltomarkdown.ConvertString(b.String())
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, nil
}
