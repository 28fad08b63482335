package controller

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/auth"
	"blockdocs/internal/equipment"
	"blockdocs/internal/web/viewmodels"
)

// EquipmentEditor provides the admin equipment forms
type EquipmentEditor struct {
	Repo      *equipment.Repository
	Templates map[string]*template.Template
	Logger    zerolog.Logger
}

// Register registers the equipment form routes
func (e *EquipmentEditor) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/equipments", e.list)
	mux.HandleFunc("POST /admin/equipments", e.create)
	mux.HandleFunc("POST /admin/equipments/{id}", e.update)
	mux.HandleFunc("GET /admin/equipments/{id}/delete", e.confirmDelete)
	mux.HandleFunc("POST /admin/equipments/{id}/delete", e.delete)
}

func (e *EquipmentEditor) list(w http.ResponseWriter, r *http.Request) {
	e.show(w, r, http.StatusOK, "")
}

func (e *EquipmentEditor) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	created, err := e.Repo.Create(r.Context(), equipmentFields(r))
	if err != nil {
		e.fail(w, r, err)
		return
	}
	e.Logger.Info().Int64("equipment", created.ID).Str("name", created.Name).Msg("equipment created")
	http.Redirect(w, r, "/admin/equipments", http.StatusSeeOther)
}

func (e *EquipmentEditor) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	if _, err := e.Repo.Update(r.Context(), id, equipmentFields(r)); err != nil {
		e.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin/equipments", http.StatusSeeOther)
}

func (e *EquipmentEditor) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	eq, err := e.Repo.FindByID(r.Context(), id)
	if err != nil {
		failPage(w, r, e.Logger, err)
		return
	}
	action := fmt.Sprintf("/admin/equipments/%d/delete", eq.ID)
	msg := fmt.Sprintf("Delete equipment %q?", eq.Name)
	if eq.PageCount > 0 {
		msg = fmt.Sprintf("%q is used by %d page(s) and cannot be deleted until they are moved.", eq.Name, eq.PageCount)
		action = ""
	}
	data := viewmodels.New(auth.FromContext(r.Context()))
	data.Confirm = &viewmodels.Confirm{
		Title:   "Delete equipment",
		Message: msg,
		Action:  action,
		Cancel:  "/admin/equipments",
	}
	render(w, e.Logger, e.Templates["confirm.html"], http.StatusOK, data)
}

func (e *EquipmentEditor) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := e.Repo.Delete(r.Context(), id); err != nil {
		e.fail(w, r, err)
		return
	}
	e.Logger.Info().Int64("equipment", id).Msg("equipment deleted")
	http.Redirect(w, r, "/admin/equipments", http.StatusSeeOther)
}

func (e *EquipmentEditor) show(w http.ResponseWriter, r *http.Request, status int, msg string) {
	equipments, err := e.Repo.List(r.Context())
	if err != nil {
		failPage(w, r, e.Logger, err)
		return
	}
	data := viewmodels.New(auth.FromContext(r.Context()))
	data.Equipments = equipments
	data.Error = msg
	render(w, e.Logger, e.Templates["equipments.html"], status, data)
}

// fail shows validation and conflict errors above the list.
func (e *EquipmentEditor) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, msg, ok := formError(err); ok {
		e.show(w, r, status, msg)
		return
	}
	failPage(w, r, e.Logger, err)
}

func equipmentFields(r *http.Request) equipment.Fields {
	return equipment.Fields{
		Name:  r.PostFormValue("name"),
		Icon:  r.PostFormValue("icon"),
		Color: r.PostFormValue("color"),
	}
}
