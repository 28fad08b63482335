package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/auth"
	"blockdocs/internal/export"
	"blockdocs/internal/models"
	"blockdocs/internal/page"
	"blockdocs/internal/web/renderer"
)

// Pages provides the page API handlers
type Pages struct {
	Service *page.Service
	Logger  zerolog.Logger
}

type savePageRequest struct {
	models.PageFields
	Blocks *[]page.BlockInput `json:"blocks"`
}

type saveBlocksRequest struct {
	Blocks []page.BlockInput `json:"blocks"`
}

type duplicateRequest struct {
	EquipmentID *int64 `json:"equipmentId"`
}

type importRequest struct {
	Source string `json:"source"`
}

// Register registers the page routes
func (p *Pages) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/pages", p.list)
	mux.HandleFunc("POST /api/pages", p.create)
	mux.HandleFunc("GET /api/pages/{id}", p.get)
	mux.HandleFunc("PUT /api/pages/{id}", p.update)
	mux.HandleFunc("DELETE /api/pages/{id}", p.delete)
	mux.HandleFunc("PUT /api/pages/{id}/blocks", p.saveBlocks)
	mux.HandleFunc("POST /api/pages/{id}/duplicate", p.duplicate)
	mux.HandleFunc("POST /api/pages/{id}/import-org", p.importOrg)
	mux.HandleFunc("POST /api/pages/{id}/import-html", p.importHTML)
	mux.HandleFunc("GET /api/pages/{id}/preview", p.preview)
	mux.HandleFunc("GET /api/pages/{id}/export.md", p.exportMarkdown)
	mux.HandleFunc("GET /api/pages/{id}/export.pdf", p.exportPDF)
}

func (p *Pages) list(w http.ResponseWriter, r *http.Request) {
	filter, err := pageFilter(r, "equipmentId")
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	pages, err := p.Service.ListPages(r.Context(), auth.FromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (p *Pages) create(w http.ResponseWriter, r *http.Request) {
	var f models.PageFields
	if err := decodeJSON(w, r, &f, false); err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	created, err := p.Service.CreatePage(r.Context(), auth.FromContext(r.Context()), f)
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (p *Pages) get(w http.ResponseWriter, r *http.Request) {
	pg, ok := p.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// update saves metadata, and the whole block list when one is sent.
func (p *Pages) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	var req savePageRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, p.Logger, err)
		return
	}

	admin := auth.FromContext(r.Context())
	var updated *models.Page
	if req.Blocks != nil {
		updated, err = p.Service.SavePage(r.Context(), admin, id, req.PageFields, *req.Blocks)
	} else {
		updated, err = p.Service.UpdatePage(r.Context(), admin, id, req.PageFields)
	}
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (p *Pages) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	if err := p.Service.DeletePage(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *Pages) saveBlocks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	var req saveBlocksRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	blocks, err := p.Service.SaveBlocks(r.Context(), auth.FromContext(r.Context()), id, req.Blocks)
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (p *Pages) duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	var req duplicateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	copied, err := p.Service.DuplicatePage(r.Context(), auth.FromContext(r.Context()), id, req.EquipmentID)
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, copied)
}

func (p *Pages) importOrg(w http.ResponseWriter, r *http.Request) {
	p.importSource(w, r, p.Service.ImportOrg)
}

func (p *Pages) importHTML(w http.ResponseWriter, r *http.Request) {
	p.importSource(w, r, p.Service.ImportHTML)
}

type importFunc func(ctx context.Context, admin *models.AdminUser, pageID int64, src string) (*models.Block, error)

// importSource appends the converted source as a raw-html block.
func (p *Pages) importSource(w http.ResponseWriter, r *http.Request, convert importFunc) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	var req importRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	block, err := convert(r.Context(), auth.FromContext(r.Context()), id, req.Source)
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

// preview renders a page's blocks regardless of its published state.
func (p *Pages) preview(w http.ResponseWriter, r *http.Request) {
	pg, ok := p.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(renderer.RenderBlocks(pg.Blocks)))
}

func (p *Pages) exportMarkdown(w http.ResponseWriter, r *http.Request) {
	pg, ok := p.load(w, r)
	if !ok {
		return
	}
	md, err := export.Markdown(pg, string(renderer.RenderBlocks(pg.Blocks)))
	if err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pg.Slug+".md"))
	w.Write([]byte(md))
}

func (p *Pages) exportPDF(w http.ResponseWriter, r *http.Request) {
	pg, ok := p.load(w, r)
	if !ok {
		return
	}
	out, err := export.PDF(pg, string(renderer.RenderBlocks(pg.Blocks)))
	if err != nil {
		writeError(w, r, p.Logger, fmt.Errorf("error building pdf: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pg.Slug+".pdf"))
	w.Write(out)
}

func (p *Pages) load(w http.ResponseWriter, r *http.Request) (*models.Page, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, p.Logger, err)
		return nil, false
	}
	pg, err := p.Service.GetPage(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, p.Logger, err)
		return nil, false
	}
	return pg, true
}
