package controller

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/auth"
	"blockdocs/internal/equipment"
	"blockdocs/internal/page"
	"blockdocs/internal/web/viewmodels"
)

// Admin serves the dashboard page listing pages, optionally for one
// equipment.
type Admin struct {
	Pages      *page.Service
	Equipments *equipment.Repository
	Templates  map[string]*template.Template
	Logger     zerolog.Logger
}

// Register registers the admin routes
func (a *Admin) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin", a.dashboard)
}

func (a *Admin) dashboard(w http.ResponseWriter, r *http.Request) {
	admin := auth.FromContext(r.Context())
	filter, err := pageFilter(r, "equipment")
	if err != nil {
		http.Error(w, message(err, apperr.ErrValidation), http.StatusBadRequest)
		return
	}
	pages, err := a.Pages.ListPages(r.Context(), admin, filter)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list pages")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	equipments, err := a.Equipments.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to list equipment")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := viewmodels.New(admin)
	data.Pages = pages
	data.Equipments = equipments
	if filter.EquipmentID != nil {
		data.EquipmentFilter = *filter.EquipmentID
	}
	render(w, a.Logger, a.Templates["admin.html"], http.StatusOK, data)
}
