package renderer

import (
	"bytes"
	"errors"
	"html/template"
	"strings"

	"blockdocs/internal/models"
	"blockdocs/internal/schema"
)

var alertIcons = map[string]string{
	"info":    "ℹ️",
	"success": "✅",
	"warning": "⚠️",
	"error":   "❌",
}

const blockTemplates = `
{{define "text"}}<div class="block block-text text-{{.Align}}">{{.Content}}</div>{{end}}

{{define "code"}}<div class="block block-code">{{if .Language}}<div class="code-lang">{{.Language}}</div>{{end}}{{.Body}}</div>{{end}}

{{define "table"}}<div class="block block-table"><table>
{{- if .Columns}}<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>{{end -}}
<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody></table></div>{{end}}

{{define "image"}}<figure class="block block-image"><img src="{{.URL}}" alt="{{.Alt}}"
{{- with .Width}} width="{{.}}"{{end}}{{with .Height}} height="{{.}}"{{end}} loading="lazy">
{{- if .Alt}}<figcaption>{{.Alt}}</figcaption>{{end}}</figure>{{end}}

{{define "alert"}}<div class="block alert alert-{{.Variant}}" role="alert"><span class="alert-icon">{{.Icon}}</span><div>
{{- if .Title}}<h3>{{.Title}}</h3>{{end}}{{if .Body}}<p>{{.Body}}</p>{{end}}</div></div>{{end}}

{{define "hero"}}<section class="block hero hero-{{.BgColor}}"><h1>{{.Title}}</h1>{{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}</section>{{end}}

{{define "card-grid"}}<div class="block card-grid">{{range .Cards}}
{{- if .Link}}<a class="card card-{{.Color}}" href="{{.Link}}">{{template "card-body" .}}</a>
{{- else}}<div class="card card-{{.Color}}">{{template "card-body" .}}</div>{{end}}
{{- end}}</div>{{end}}

{{define "card-body"}}<span class="card-icon">{{.Icon}}</span><h3>{{.Title}}</h3>{{if .Description}}<p>{{.Description}}</p>{{end}}{{end}}

{{define "raw-html"}}<div class="block block-raw-html"><div class="html-container"><style>{{.CSS}}</style>{{.Body}}</div></div>{{end}}

{{define "unknown"}}<div class="block block-unknown">Unknown block type: {{.}}</div>{{end}}

{{define "literal"}}<div class="block block-text"><p>{{.}}</p></div>{{end}}
`

var tmpl = template.Must(template.New("blocks").Parse(blockTemplates))

// RenderBlocks renders blocks in the order given.
func RenderBlocks(blocks []models.Block) template.HTML {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(string(RenderBlock(blk)))
	}
	return template.HTML(b.String())
}

// RenderBlock renders one block. It never fails: an unknown type becomes a
// visible placeholder and an unreadable payload is shown as plain text.
func RenderBlock(b models.Block) template.HTML {
	p, err := b.Payload()
	switch {
	case errors.Is(err, schema.ErrUnknownType):
		return execute("unknown", string(b.Type))
	case err != nil:
		return literal(b.Data)
	}

	switch v := p.(type) {
	case schema.Text:
		align := v.Align
		if align == "" {
			align = "left"
		}
		return execute("text", struct {
			Align   string
			Content template.HTML
		}{align, template.HTML(StripScripts(v.Content))})

	case schema.Code:
		return execute("code", struct {
			Language string
			Body     template.HTML
		}{v.Language, template.HTML(Highlight(v.Code, v.Language))})

	case schema.Table:
		if len(v.Rows) == 0 {
			return ""
		}
		return execute("table", struct {
			Columns []string
			Rows    [][]string
		}{v.Columns, padRows(v.Rows, len(v.Columns))})

	case schema.Image:
		if strings.TrimSpace(v.URL) == "" {
			return ""
		}
		return execute("image", v)

	case schema.Alert:
		variant := v.Variant
		if variant == "" {
			variant = "info"
		}
		return execute("alert", struct {
			Variant, Icon, Title, Body string
		}{variant, alertIcons[variant], v.Title, v.Body})

	case schema.Hero:
		bg := v.BgColor
		if bg == "" {
			bg = "blue"
		}
		return execute("hero", struct {
			Title, Subtitle, BgColor string
		}{v.Title, v.Subtitle, bg})

	case schema.CardGrid:
		if len(v.Cards) == 0 {
			return ""
		}
		cards := make([]schema.Card, len(v.Cards))
		for i, c := range v.Cards {
			if c.Color == "" {
				c.Color = "blue"
			}
			cards[i] = c
		}
		return execute("card-grid", struct{ Cards []schema.Card }{cards})

	case schema.RawHTML:
		if strings.TrimSpace(string(v)) == "" {
			return ""
		}
		return execute("raw-html", struct {
			CSS  template.CSS
			Body template.HTML
		}{template.CSS(PDFCleanerCSS), template.HTML(StripScripts(string(v)))})
	}
	return execute("unknown", string(b.Type))
}

// Rows shorter than the header are padded with empty cells. Longer rows
// keep all of their cells.
func padRows(rows [][]string, cols int) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) < cols {
			padded := make([]string, cols)
			copy(padded, r)
			r = padded
		}
		out[i] = r
	}
	return out
}

func literal(data string) template.HTML {
	return execute("literal", data)
}

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return template.HTML(`<div class="block block-error">` + template.HTMLEscapeString(err.Error()) + `</div>`)
	}
	return template.HTML(buf.String())
}
