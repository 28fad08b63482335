package renderer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripScripts removes every <script> element. Everything else is kept,
// including styles from a pasted document head.
func StripScripts(markup string) string {
	if !strings.Contains(strings.ToLower(markup), "<script") {
		return markup
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	doc.Find("script").Remove()

	head, _ := doc.Find("head").Html()
	body, _ := doc.Find("body").Html()
	return head + body
}

// PDFCleanerCSS neutralises the page chrome of HTML produced by
// PDF-to-HTML converters so the content flows like the rest of the page.
const PDFCleanerCSS = `
html, body, #page-container, .page-container {
  background: transparent !important;
  margin: 0 !important;
  padding: 0 !important;
  overflow: visible !important;
}
#sidebar, .sidebar, nav[id*="nav"], .navigation {
  display: none !important;
}
.pf, .page, [class*="page"], [id*="page"] {
  box-shadow: none !important;
  margin: 0 !important;
  padding: 20px !important;
  border: none !important;
  background-color: transparent !important;
  position: relative !important;
  width: 100% !important;
  height: auto !important;
  page-break-after: auto !important;
  page-break-before: auto !important;
}
div[style*="position: absolute"],
span[style*="position: absolute"],
p[style*="position: absolute"] {
  position: relative !important;
  left: auto !important;
  top: auto !important;
  right: auto !important;
  bottom: auto !important;
}
.t, span, p, div {
  color: #334155 !important;
}
img {
  max-width: 100% !important;
  height: auto !important;
  display: block !important;
}
table {
  width: 100% !important;
  border-collapse: collapse !important;
}
td, th {
  padding: 8px !important;
  border: 1px solid #d1d5db !important;
}
*[style*="width: 8"], *[style*="width: 9"] {
  width: 100% !important;
}
.pc {
  position: relative !important;
  width: 100% !important;
}
`
