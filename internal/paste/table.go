// Package paste recovers document structure from content pasted into the
// editor: tables and lists hidden in plain text, and noisy HTML coming from
// word processors or PDF viewers.
package paste

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// TableDetection is the result of DetectTablePattern.
type TableDetection struct {
	IsTable bool       `json:"isTable"`
	Rows    [][]string `json:"rows"`
	RawText string     `json:"rawText"`
}

const tableLineRatio = 0.7

var (
	multiSpace = regexp.MustCompile(`\s{2,}`)
	boxChars   = regexp.MustCompile(`[┌┬┐├┼┤└┴┘─│]`)
	borderLine = regexp.MustCompile(`^[┌┬┐├┼┤└┴┘─│\s]*$`)
	borderCell = regexp.MustCompile(`^[─\s]*$`)
)

func nonBlankLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// DetectTablePattern reports whether text looks like a table. Tab
// separated lines are tried first, then runs of two or more spaces, then
// box-drawing borders.
func DetectTablePattern(text string) TableDetection {
	none := TableDetection{Rows: [][]string{}, RawText: text}
	lines := nonBlankLines(text)
	if len(lines) < 2 {
		return none
	}

	if rows, ok := splitTable(lines, func(l string) bool { return strings.Contains(l, "\t") },
		func(l string) []string { return strings.Split(l, "\t") }); ok {
		return TableDetection{IsTable: true, Rows: rows, RawText: text}
	}

	if rows, ok := splitTable(lines, multiSpace.MatchString,
		func(l string) []string { return multiSpace.Split(l, -1) }); ok {
		return TableDetection{IsTable: true, Rows: rows, RawText: text}
	}

	if boxChars.MatchString(text) {
		if rows, ok := parseBoxTable(lines); ok {
			return TableDetection{IsTable: true, Rows: rows, RawText: text}
		}
	}
	return none
}

// splitTable requires enough lines to carry the separator and every line to
// split into the same number (at least two) of non-empty cells.
func splitTable(lines []string, has func(string) bool, split func(string) []string) ([][]string, bool) {
	n := 0
	for _, l := range lines {
		if has(l) {
			n++
		}
	}
	if float64(n) < float64(len(lines))*tableLineRatio {
		return nil, false
	}

	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, cells(split(l)))
	}
	cols := len(rows[0])
	if cols < 2 {
		return nil, false
	}
	for _, r := range rows {
		if len(r) != cols {
			return nil, false
		}
	}
	return rows, true
}

func cells(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseBoxTable reads the │ separated rows between border lines. Like
// splitTable it needs two or more rows with the same number (at least two)
// of cells.
func parseBoxTable(lines []string) ([][]string, bool) {
	var rows [][]string
	for _, line := range lines {
		if borderLine.MatchString(line) {
			continue
		}
		if !strings.Contains(line, "│") {
			return nil, false
		}
		var row []string
		for _, c := range strings.Split(line, "│") {
			c = strings.TrimSpace(c)
			if c != "" && !borderCell.MatchString(c) {
				row = append(row, c)
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, false
	}
	for _, r := range rows {
		if len(r) != len(rows[0]) {
			return nil, false
		}
	}
	return rows, true
}

// TableToHTML renders detected rows. Cells of the first row become header
// cells when they read like column titles.
func TableToHTML(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<table><tbody>")
	for i, row := range rows {
		b.WriteString("<tr>")
		for _, c := range row {
			tag := "td"
			if i == 0 && isHeaderCell(c) {
				tag = "th"
			}
			b.WriteString("<" + tag + ">" + html.EscapeString(c) + "</" + tag + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func isHeaderCell(c string) bool {
	n := len([]rune(c))
	if n == 0 || n >= 50 {
		return false
	}
	upper, letters := 0, 0
	for _, r := range c {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	allCaps := letters > 0 && upper == letters
	return allCaps || float64(upper) > float64(n)*0.4
}
