package paste

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

const noiseSelector = "script, style, meta, link"

var strippedAttrs = []string{"style", "class", "id", "data-mce-style", "data-mce-bogus", "data-cke-temp"}

// CleanHTML removes scripts and styling noise but keeps the structure.
func CleanHTML(dirty string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(dirty))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	body := doc.Find("body")
	body.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, a := range strippedAttrs {
			s.RemoveAttr(a)
		}
	})
	return body.Html()
}

var emptyParagraph = regexp.MustCompile(`<p>\s*</p>`)

// NormalizeHTML rewrites rich clipboard HTML into a small set of semantic
// tags. Wrapper tags are unwrapped and anything else is dropped. The result
// contains no tags at all when only text survived.
func NormalizeHTML(dirty string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(dirty))
	if err != nil {
		return ""
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	out := normalizeNode(body.Nodes[0])
	return strings.TrimSpace(emptyParagraph.ReplaceAllString(out, ""))
}

func normalizeNode(n *xhtml.Node) string {
	switch n.Type {
	case xhtml.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			// Keeps words apart in "<b>Hello</b> <i>World</i>".
			if isInline(n.PrevSibling) && isInline(n.NextSibling) {
				return " "
			}
			return ""
		}
		return html.EscapeString(n.Data)
	case xhtml.ElementNode, xhtml.DocumentNode:
	default:
		return ""
	}

	tag := strings.ToLower(n.Data)
	switch tag {
	case "script", "style", "meta", "link", "img":
		return ""
	case "br", "hr":
		return "<" + tag + ">"
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(normalizeNode(c))
	}
	children := b.String()
	if children == "" {
		return ""
	}

	switch tag {
	case "table":
		if strings.Contains(children, "<tbody>") {
			return "<table>" + children + "</table>"
		}
		return "<table><tbody>" + children + "</tbody></table>"
	case "thead", "tfoot":
		return children
	case "tbody":
		return "<tbody>" + children + "</tbody>"
	case "tr", "td", "th", "u", "code", "blockquote", "pre", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li":
		return "<" + tag + ">" + children + "</" + tag + ">"
	case "strong", "b":
		return "<strong>" + children + "</strong>"
	case "em", "i":
		return "<em>" + children + "</em>"
	case "a":
		if href := attr(n, "href"); safeHref(href) {
			return `<a href="` + html.EscapeString(href) + `">` + children + "</a>"
		}
		return children
	case "p", "div", "section", "article":
		return "<p>" + children + "</p>"
	}
	return children
}

var inlineTags = map[string]bool{
	"a": true, "b": true, "strong": true, "i": true, "em": true, "u": true, "span": true,
	"code": true, "font": true, "small": true, "sub": true, "sup": true, "mark": true,
}

func isInline(n *xhtml.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case xhtml.TextNode:
		return strings.TrimSpace(n.Data) != ""
	case xhtml.ElementNode:
		return inlineTags[strings.ToLower(n.Data)]
	}
	return false
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func safeHref(href string) bool {
	if href == "" {
		return false
	}
	lower := strings.ToLower(href)
	return !strings.HasPrefix(lower, "javascript:") && !strings.HasPrefix(lower, "data:") && !strings.HasPrefix(lower, "vbscript:")
}

func hasMarkup(s string) bool {
	return strings.Contains(s, "<")
}
