package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/models"
)

// maxJSONBody bounds API request bodies. Raw-html blocks carrying whole
// converted PDFs are the largest payloads.
const maxJSONBody = 20 << 20

type errorResponse struct {
	Error string `json:"error"`
	Count int    `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to its status code. Unexpected errors are
// logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var conflict *apperr.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflict.Message, Count: conflict.Count})
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: message(err, apperr.ErrValidation)})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	default:
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// message drops the "validation failed: " prefix from caller-facing text.
func message(err, kind error) string {
	return strings.TrimPrefix(err.Error(), kind.Error()+": ")
}

// decodeJSON reads a JSON request body into v. An empty body is allowed
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

// pageFilter reads an optional equipment id from the query string.
func pageFilter(r *http.Request, key string) (models.PageFilter, error) {
	var f models.PageFilter
	v := r.URL.Query().Get(key)
	if v == "" {
		return f, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return f, apperr.Validation("invalid %s %q", key, v)
	}
	f.EquipmentID = &id
	return f, nil
}

// render executes a page template into a buffer first so a template error
// never leaves a half-written response.
func render(w http.ResponseWriter, logger zerolog.Logger, t *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logger.Error().Err(err).Str("template", t.Name()).Msg("failed to render template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
