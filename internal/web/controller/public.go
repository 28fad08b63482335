package controller

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/auth"
	"blockdocs/internal/catalog"
	"blockdocs/internal/web/renderer"
	"blockdocs/internal/web/viewmodels"
)

// Public serves the published documentation.
type Public struct {
	Catalog   *catalog.Service
	Templates map[string]*template.Template
	Logger    zerolog.Logger
}

// Register registers the public routes
func (p *Public) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.home)
	mux.HandleFunc("GET /docs/{slug}", p.doc)
	mux.HandleFunc("GET /static/chroma.css", p.chromaCSS)
}

func (p *Public) home(w http.ResponseWriter, r *http.Request) {
	groups, err := p.Catalog.Home(r.Context())
	if err != nil {
		p.Logger.Error().Err(err).Msg("failed to load catalog")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := viewmodels.New(auth.FromContext(r.Context()))
	data.Groups = groups
	render(w, p.Logger, p.Templates["index.html"], http.StatusOK, data)
}

func (p *Public) doc(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	page, err := p.Catalog.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		p.Logger.Error().Err(err).Str("slug", slug).Msg("failed to load page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	related, err := p.Catalog.ListPublished(r.Context(), slug)
	if err != nil {
		p.Logger.Error().Err(err).Msg("failed to list pages")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := viewmodels.New(auth.FromContext(r.Context()))
	data.Page = page
	data.Related = related
	data.Content = renderer.RenderBlocks(page.Blocks)
	render(w, p.Logger, p.Templates["doc.html"], http.StatusOK, data)
}

func (p *Public) chromaCSS(w http.ResponseWriter, r *http.Request) {
	css, err := renderer.HighlightCSS()
	if err != nil {
		p.Logger.Error().Err(err).Msg("failed to build highlight stylesheet")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(css))
}
