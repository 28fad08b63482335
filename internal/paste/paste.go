package paste

import (
	"html"
	"strings"
)

// Kind names the path that produced a Result.
type Kind string

const (
	KindEmpty Kind = "empty"
	KindHTML  Kind = "html"
	KindTable Kind = "table"
	KindList  Kind = "list"
	KindText  Kind = "text"
)

// Result is normalized markup ready to be inserted into a text block.
type Result struct {
	HTML string `json:"html"`
	Kind Kind   `json:"kind"`
}

// Process turns clipboard content into markup. Rich HTML wins when it
// still carries markup after normalization. Otherwise the surviving text,
// or the plain-text flavour, goes through table detection and then the
// line heuristics.
func Process(clipboardHTML, clipboardText string) Result {
	text := clipboardText
	if strings.TrimSpace(clipboardHTML) != "" {
		out := NormalizeHTML(clipboardHTML)
		if hasMarkup(out) {
			return Result{HTML: out, Kind: KindHTML}
		}
		if out != "" {
			text = html.UnescapeString(out)
		}
	}

	if strings.TrimSpace(text) == "" {
		return Result{Kind: KindEmpty}
	}
	if t := DetectTablePattern(text); t.IsTable {
		return Result{HTML: TableToHTML(t.Rows), Kind: KindTable}
	}
	return Result{HTML: TextToHTML(text), Kind: KindText}
}

// ConvertSelection is the explicit "convert selection" action: a table if
// one is detected, else a list, else one paragraph per line.
func ConvertSelection(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Kind: KindEmpty}
	}
	if t := DetectTablePattern(text); t.IsTable {
		return Result{HTML: TableToHTML(t.Rows), Kind: KindTable}
	}
	if l := DetectListPattern(text); l.IsList {
		return Result{HTML: ListToHTML(l.Items, l.Ordered), Kind: KindList}
	}
	return Result{HTML: TextToParagraphs(text), Kind: KindText}
}
