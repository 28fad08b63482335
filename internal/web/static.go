package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"blockdocs/internal/models"
)

//go:embed static
var staticFiles embed.FS

//go:embed templates
var templateFiles embed.FS

// StaticFileServer serves the embedded stylesheets and scripts.
func StaticFileServer() http.Handler {
	fsys, _ := fs.Sub(staticFiles, "static")
	return http.FileServer(http.FS(fsys))
}

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"equipmentName": func(e *models.Equipment) string {
		if e == nil {
			return "General"
		}
		return e.Name
	},
}

// ParseTemplates builds one isolated template set per page, each sharing
// layout.html.
func ParseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	for _, name := range []string{"index.html", "doc.html", "login.html", "admin.html", "page_edit.html", "equipments.html", "confirm.html"} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFiles, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		templates[name] = t
	}
	return templates, nil
}
