package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jung-kurt/gofpdf"

	"blockdocs/internal/models"
)

const (
	lineHeight = 5.0
	cellLine   = 4.5
)

type rgb struct{ r, g, b int }

var (
	alertFills = map[string]rgb{
		"info":    {239, 246, 255},
		"success": {236, 253, 245},
		"warning": {255, 251, 235},
		"error":   {254, 242, 242},
	}
	heroFills = map[string]rgb{
		"blue":   {37, 99, 235},
		"green":  {5, 150, 105},
		"purple": {124, 58, 237},
		"orange": {234, 88, 12},
	}
	headingSizes = map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
)

// blockElements start a new paragraph in the flow of a text or raw-html
// block. Anything else is inline and folded into the surrounding text.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "figure": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "pre": true, "blockquote": true, "hr": true,
}

// PDF lays out a page as an A4 document from its rendered block markup.
// Each block kind gets its own treatment: tables become ruled grids,
// alerts and heroes keep their colours and code keeps its line breaks.
func PDF(p *models.Page, body string) ([]byte, error) {
	return renderPDF(p, body, true)
}

func renderPDF(p *models.Page, body string, compress bool) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing page markup: %w", err)
	}
	doc.Find("script, style").Remove()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(p.Title, true)
	pdf.AddPage()

	l := newLayout(pdf)
	l.heading(p.Title, 1)
	if p.Description != nil && *p.Description != "" {
		l.note(*p.Description)
	}
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		l.block(s)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type layout struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	width float64
}

func newLayout(pdf *gofpdf.Fpdf) *layout {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return &layout{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: pageW - left - right,
	}
}

// block dispatches on the class the renderer gives each block wrapper.
func (l *layout) block(s *goquery.Selection) {
	switch {
	case s.HasClass("block-code"):
		l.code(s.Find(".code-lang").Text(), s.Find("pre").Text())
	case s.HasClass("block-table"):
		l.table(s.Find("table").First())
	case s.HasClass("block-image"):
		alt := s.Find("figcaption").Text()
		if alt == "" {
			alt, _ = s.Find("img").Attr("alt")
		}
		l.note("[Image: " + alt + "]")
	case s.HasClass("alert"):
		l.alert(variantOf(s, "alert-", alertFills), s.Find("h3").Text(), s.Find("p").Text())
	case s.HasClass("hero"):
		l.hero(variantOf(s, "hero-", heroFills), s.Find("h1").Text(), s.Find("p").Text())
	case s.HasClass("card-grid"):
		s.Find(".card").Each(func(_ int, c *goquery.Selection) {
			item := collapse(c.Find("h3").Text())
			if desc := collapse(c.Find("p").Text()); desc != "" {
				item += ": " + desc
			}
			l.listItem("• ", item)
		})
		l.pdf.Ln(2)
	case s.HasClass("block-unknown"):
		l.note(collapse(s.Text()))
	default:
		l.container(s)
	}
}

func variantOf(s *goquery.Selection, prefix string, known map[string]rgb) string {
	for name := range known {
		if s.HasClass(prefix + name) {
			return name
		}
	}
	return ""
}

// container lays out free-form HTML from text and raw-html blocks.
func (l *layout) container(s *goquery.Selection) {
	if !hasBlockChild(s) {
		l.paragraph(collapse(s.Text()))
		return
	}
	s.Children().Each(func(_ int, c *goquery.Selection) {
		l.element(c)
	})
}

func (l *layout) element(s *goquery.Selection) {
	name := goquery.NodeName(s)
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(name[1:])
		l.heading(collapse(s.Text()), level)
	case "ul", "ol":
		s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
			marker := "• "
			if name == "ol" {
				marker = strconv.Itoa(i+1) + ". "
			}
			l.listItem(marker, collapse(li.Text()))
		})
		l.pdf.Ln(2)
	case "table":
		l.table(s)
	case "pre":
		l.code("", s.Text())
	case "blockquote":
		l.quote(collapse(s.Text()))
	case "img":
		alt, _ := s.Attr("alt")
		l.note("[Image: " + alt + "]")
	case "hr":
		y := l.pdf.GetY() + 2
		left, _, _, _ := l.pdf.GetMargins()
		l.pdf.SetDrawColor(209, 213, 219)
		l.pdf.Line(left, y, left+l.width, y)
		l.pdf.Ln(4)
	case "br":
	default:
		l.container(s)
	}
}

func hasBlockChild(s *goquery.Selection) bool {
	found := false
	s.Children().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		found = blockElements[goquery.NodeName(c)]
		return !found
	})
	return found
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func (l *layout) heading(text string, level int) {
	size, ok := headingSizes[level]
	if !ok {
		size = 10
	}
	l.pdf.Ln(4)
	l.pdf.SetFont("Helvetica", "B", size)
	l.pdf.MultiCell(0, size*0.6, l.tr(text), "", "L", false)
	l.pdf.Ln(2)
}

func (l *layout) paragraph(text string) {
	if text == "" {
		return
	}
	l.pdf.SetFont("Helvetica", "", 10)
	l.pdf.MultiCell(0, lineHeight, l.tr(text), "", "L", false)
	l.pdf.Ln(2)
}

func (l *layout) listItem(marker, text string) {
	l.pdf.SetFont("Helvetica", "", 10)
	l.pdf.MultiCell(0, lineHeight, l.tr(marker+text), "", "L", false)
}

func (l *layout) note(text string) {
	l.pdf.SetFont("Helvetica", "I", 9)
	l.pdf.SetTextColor(107, 114, 128)
	l.pdf.MultiCell(0, lineHeight, l.tr(text), "", "L", false)
	l.pdf.SetTextColor(0, 0, 0)
	l.pdf.Ln(2)
}

func (l *layout) quote(text string) {
	l.pdf.SetFont("Helvetica", "I", 10)
	l.pdf.SetTextColor(80, 80, 80)
	l.pdf.MultiCell(0, lineHeight, l.tr(text), "", "L", false)
	l.pdf.SetTextColor(0, 0, 0)
	l.pdf.Ln(2)
}

func (l *layout) code(lang, source string) {
	if lang = collapse(lang); lang != "" {
		l.pdf.SetFont("Helvetica", "B", 8)
		l.pdf.SetTextColor(107, 114, 128)
		l.pdf.MultiCell(0, 4, l.tr(lang), "", "L", false)
		l.pdf.SetTextColor(0, 0, 0)
	}
	l.pdf.SetFont("Courier", "", 9)
	l.pdf.SetFillColor(245, 245, 245)
	l.pdf.MultiCell(0, cellLine, l.tr(strings.TrimRight(source, "\n")), "", "L", true)
	l.pdf.Ln(3)
}

func (l *layout) alert(variant, title, body string) {
	fill, ok := alertFills[variant]
	if !ok {
		fill = alertFills["info"]
	}
	l.pdf.SetFillColor(fill.r, fill.g, fill.b)
	if title = collapse(title); title != "" {
		l.pdf.SetFont("Helvetica", "B", 11)
		l.pdf.MultiCell(0, 6, l.tr(title), "", "L", true)
	}
	if body = collapse(body); body != "" {
		l.pdf.SetFont("Helvetica", "", 10)
		l.pdf.MultiCell(0, lineHeight, l.tr(body), "", "L", true)
	}
	l.pdf.Ln(3)
}

func (l *layout) hero(color, title, subtitle string) {
	fill, ok := heroFills[color]
	if !ok {
		fill = heroFills["blue"]
	}
	l.pdf.SetFillColor(fill.r, fill.g, fill.b)
	l.pdf.SetTextColor(255, 255, 255)
	l.pdf.SetFont("Helvetica", "B", 20)
	l.pdf.MultiCell(0, 12, l.tr(collapse(title)), "", "C", true)
	if subtitle = collapse(subtitle); subtitle != "" {
		l.pdf.SetFont("Helvetica", "", 12)
		l.pdf.MultiCell(0, 8, l.tr(subtitle), "", "C", true)
	}
	l.pdf.SetTextColor(0, 0, 0)
	l.pdf.Ln(4)
}

// table draws a ruled grid with equal column widths. Header cells are
// the <th> ones; rows grow to fit their longest cell.
func (l *layout) table(t *goquery.Selection) {
	var rows [][]string
	var header []bool
	cols := 0
	t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Children().Filter("th, td")
		var row []string
		cells.Each(func(_ int, c *goquery.Selection) {
			row = append(row, collapse(c.Text()))
		})
		if len(row) == 0 {
			return
		}
		rows = append(rows, row)
		header = append(header, cells.Filter("td").Length() == 0)
		cols = max(cols, len(row))
	})
	if cols == 0 {
		return
	}

	l.pdf.SetDrawColor(209, 213, 219)
	l.pdf.SetFillColor(243, 244, 246)
	for i, row := range rows {
		style := ""
		if header[i] {
			style = "B"
		}
		l.pdf.SetFont("Helvetica", style, 9)
		l.row(row, cols, header[i])
	}
	l.pdf.Ln(3)
}

func (l *layout) row(cells []string, cols int, filled bool) {
	w := l.width / float64(cols)
	texts := make([]string, cols)
	lines := 1
	for i := range texts {
		if i < len(cells) {
			texts[i] = l.tr(cells[i])
		}
		lines = max(lines, l.lineCount(texts[i], w-4))
	}
	h := float64(lines)*cellLine + 2

	_, pageH := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()
	if l.pdf.GetY()+h > pageH-bottom {
		l.pdf.AddPage()
	}

	style := "D"
	if filled {
		style = "FD"
	}
	x, y := l.pdf.GetXY()
	for i, text := range texts {
		cx := x + float64(i)*w
		l.pdf.Rect(cx, y, w, h, style)
		l.pdf.SetXY(cx, y+1)
		l.pdf.MultiCell(w, cellLine, text, "", "L", false)
	}
	l.pdf.SetXY(x, y+h)
}

// lineCount estimates how many lines MultiCell needs for text at width w.
func (l *layout) lineCount(text string, w float64) int {
	n, current := 1, 0.0
	space := l.pdf.GetStringWidth(" ")
	for _, word := range strings.Fields(text) {
		ww := l.pdf.GetStringWidth(word)
		switch {
		case current == 0:
			current = ww
		case current+space+ww > w:
			n++
			current = ww
		default:
			current += space + ww
		}
		for current > w {
			n++
			current -= w
		}
	}
	return n
}
