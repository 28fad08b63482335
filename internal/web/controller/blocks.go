package controller

import (
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/auth"
	"blockdocs/internal/page"
)

// Blocks provides the single-block handlers
type Blocks struct {
	Service *page.Service
	Logger  zerolog.Logger
}

// Register registers the block routes
func (b *Blocks) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/blocks", b.create)
	mux.HandleFunc("PUT /api/blocks", b.update)
	mux.HandleFunc("PUT /api/blocks/{id}", b.update)
	mux.HandleFunc("DELETE /api/blocks/{id}", b.delete)
}

func (b *Blocks) create(w http.ResponseWriter, r *http.Request) {
	var in page.BlockInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, b.Logger, err)
		return
	}
	block, err := b.Service.CreateBlock(r.Context(), auth.FromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, b.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

// update takes the block id from the path, or from the body on PUT /api/blocks.
func (b *Blocks) update(w http.ResponseWriter, r *http.Request) {
	var in page.BlockInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeError(w, r, b.Logger, err)
		return
	}
	id := in.ID
	if r.PathValue("id") != "" {
		var err error
		if id, err = pathID(r, "id"); err != nil {
			writeError(w, r, b.Logger, err)
			return
		}
	}
	if id <= 0 {
		writeError(w, r, b.Logger, apperr.Validation("block id is required"))
		return
	}

	block, err := b.Service.UpdateBlock(r.Context(), auth.FromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, r, b.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (b *Blocks) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, b.Logger, err)
		return
	}
	if err := b.Service.DeleteBlock(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		writeError(w, r, b.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
