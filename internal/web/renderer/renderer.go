package renderer

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/niklasfasching/go-org/org"
)

const highlightStyle = "friendly"

var formatter = chromahtml.New(chromahtml.WithClasses(true))

// Highlight renders source as class-based chroma markup. Languages chroma
// does not know come back as an escaped plain block.
func Highlight(source, lang string) string {
	lexer := lexers.Get(strings.TrimSpace(lang))
	if lexer == nil {
		return plainCode(source)
	}
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return plainCode(source)
	}
	var w bytes.Buffer
	if err := formatter.Format(&w, styles.Get(highlightStyle), iterator); err != nil {
		return plainCode(source)
	}
	return w.String()
}

func plainCode(source string) string {
	return "<pre><code>" + html.EscapeString(source) + "</code></pre>"
}

// HighlightCSS returns the stylesheet matching the classes Highlight emits.
func HighlightCSS() (string, error) {
	var w bytes.Buffer
	if err := formatter.WriteCSS(&w, styles.Get(highlightStyle)); err != nil {
		return "", err
	}
	return w.String(), nil
}

// NewHTMLWriterWithChroma returns an org writer whose source blocks are
// highlighted like code blocks.
func NewHTMLWriterWithChroma() *org.HTMLWriter {
	w := org.NewHTMLWriter()
	w.HighlightCodeBlock = func(source, lang string, inline bool, params map[string]string) string {
		return Highlight(source, lang)
	}
	return w
}

// OrgToHTML converts an org-mode document to HTML.
func OrgToHTML(src string) (string, error) {
	out, err := org.New().Parse(strings.NewReader(src), "").Write(NewHTMLWriterWithChroma())
	if err != nil {
		return "", fmt.Errorf("failed to render org document: %w", err)
	}
	return out, nil
}
