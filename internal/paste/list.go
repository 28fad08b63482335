package paste

import (
	"html"
	"regexp"
	"strings"
)

// ListDetection is the result of DetectListPattern.
type ListDetection struct {
	IsList  bool     `json:"isList"`
	Items   []string `json:"items"`
	Ordered bool     `json:"ordered"`
}

const listLineRatio = 0.6

var (
	bulletPrefix = regexp.MustCompile(`^[•\-*+]\s+`)
	numberPrefix = regexp.MustCompile(`^\d+[.)]\s+`)
	letterPrefix = regexp.MustCompile(`^[a-z][.)]\s+`)
)

// DetectListPattern reports whether most non-blank lines share a bullet,
// numeric or lettered prefix. Matched prefixes are stripped from the items.
func DetectListPattern(text string) ListDetection {
	none := ListDetection{Items: []string{}}
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return none
	}

	var bullets, numbers, letters int
	for _, l := range lines {
		switch {
		case bulletPrefix.MatchString(l):
			bullets++
		case numberPrefix.MatchString(l):
			numbers++
		case letterPrefix.MatchString(l):
			letters++
		}
	}

	threshold := float64(len(lines)) * listLineRatio
	ordered := false
	switch {
	case float64(bullets) >= threshold:
	case float64(numbers) >= threshold, float64(letters) >= threshold:
		ordered = true
	default:
		return none
	}

	items := []string{}
	for _, l := range lines {
		for _, p := range []*regexp.Regexp{bulletPrefix, numberPrefix, letterPrefix} {
			if loc := p.FindStringIndex(l); loc != nil {
				items = append(items, l[loc[1]:])
				break
			}
		}
	}
	return ListDetection{IsList: true, Items: items, Ordered: ordered}
}

// ListToHTML renders items as an unordered or ordered list.
func ListToHTML(items []string, ordered bool) string {
	tag := "ul"
	if ordered {
		tag = "ol"
	}
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, it := range items {
		b.WriteString("<li>" + html.EscapeString(it) + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}
