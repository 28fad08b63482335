package controller

import (
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/equipment"
)

// Equipments provides the equipment handlers
type Equipments struct {
	Repo   *equipment.Repository
	Logger zerolog.Logger
}

type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

// Register registers the equipment routes
func (e *Equipments) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/equipments", e.list)
	mux.HandleFunc("POST /api/equipments", e.create)
	mux.HandleFunc("PUT /api/equipments/order", e.reorder)
	mux.HandleFunc("PUT /api/equipments/{id}", e.update)
	mux.HandleFunc("DELETE /api/equipments/{id}", e.delete)
}

func (e *Equipments) list(w http.ResponseWriter, r *http.Request) {
	equipments, err := e.Repo.List(r.Context())
	if err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, equipments)
}

func (e *Equipments) create(w http.ResponseWriter, r *http.Request) {
	var f equipment.Fields
	if err := decodeJSON(w, r, &f, false); err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	created, err := e.Repo.Create(r.Context(), f)
	if err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (e *Equipments) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	var f equipment.Fields
	if err := decodeJSON(w, r, &f, false); err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	updated, err := e.Repo.Update(r.Context(), id, f)
	if err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (e *Equipments) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	if err := e.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *Equipments) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, r, e.Logger, apperr.Validation("ids are required"))
		return
	}
	if err := e.Repo.Reorder(r.Context(), req.IDs); err != nil {
		writeError(w, r, e.Logger, err)
		return
	}
	e.list(w, r)
}
