package paste

import (
	"html"
	"regexp"
	"strings"
)

const headingMaxLen = 80

var (
	codeOpen      = regexp.MustCompile(`^(\{|\[|JSON\s*)$`)
	codeClose     = regexp.MustCompile(`^[}\]]$`)
	textBullet    = regexp.MustCompile(`^[•\-*]\s`)
	numberHeading = regexp.MustCompile(`^\d+\.\s`)
	colonHeading  = regexp.MustCompile(`^[A-Z].*:$`)
)

type codeSpan struct {
	lines  []string
	fenced bool
}

// TextToHTML applies the line heuristics to plain text: bracketed or
// fenced spans become code blocks, bullet lines become lists, short
// numbered or colon-terminated lines become headings and everything else
// becomes a paragraph. Blank lines only separate.
func TextToHTML(text string) string {
	var (
		b      strings.Builder
		code   *codeSpan
		inList bool
	)
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}
	flushCode := func() {
		body := strings.TrimSpace(strings.Join(code.lines, "\n"))
		if body != "" {
			b.WriteString("<pre><code>" + html.EscapeString(body) + "</code></pre>")
		}
		code = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		if code != nil {
			if code.fenced && strings.HasPrefix(trimmed, "```") {
				flushCode()
				continue
			}
			code.lines = append(code.lines, trimmed)
			if !code.fenced && codeClose.MatchString(trimmed) {
				flushCode()
			}
			continue
		}

		switch {
		case trimmed == "":
			closeList()
		case strings.HasPrefix(trimmed, "```"):
			closeList()
			code = &codeSpan{fenced: true}
		case codeOpen.MatchString(trimmed):
			closeList()
			code = &codeSpan{lines: []string{trimmed}}
		case textBullet.MatchString(trimmed):
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			item := strings.TrimSpace(trimmed[len(textBullet.FindString(trimmed)):])
			b.WriteString("<li>" + html.EscapeString(item) + "</li>")
		case len([]rune(trimmed)) < headingMaxLen && (numberHeading.MatchString(trimmed) || colonHeading.MatchString(trimmed)):
			closeList()
			b.WriteString("<h3>" + html.EscapeString(trimmed) + "</h3>")
		default:
			closeList()
			b.WriteString("<p>" + html.EscapeString(trimmed) + "</p>")
		}
	}
	if code != nil {
		flushCode()
	}
	closeList()
	return b.String()
}

// TextToParagraphs wraps every non-blank line in a paragraph.
func TextToParagraphs(text string) string {
	var b strings.Builder
	for _, l := range nonBlankLines(text) {
		b.WriteString("<p>" + html.EscapeString(l) + "</p>")
	}
	return b.String()
}
