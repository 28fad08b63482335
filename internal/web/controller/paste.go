package controller

import (
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/paste"
)

// Paste exposes the clipboard normalization used by the block editor.
type Paste struct {
	Logger zerolog.Logger
}

type pasteRequest struct {
	HTML string `json:"html"`
	Text string `json:"text"`

	// Convert runs the explicit convert-selection action on Text.
	Convert bool `json:"convert"`
}

// Register registers the paste routes
func (p *Paste) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/paste", p.paste)
}

func (p *Paste) paste(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, p.Logger, err)
		return
	}
	if req.Convert {
		writeJSON(w, http.StatusOK, paste.ConvertSelection(req.Text))
		return
	}
	writeJSON(w, http.StatusOK, paste.Process(req.HTML, req.Text))
}
