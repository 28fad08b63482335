package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"blockdocs/internal/apperr"
	"blockdocs/internal/auth"
	"blockdocs/internal/equipment"
	"blockdocs/internal/models"
	"blockdocs/internal/page"
	"blockdocs/internal/schema"
	"blockdocs/internal/web/viewmodels"
)

// PageEditor provides the admin page forms
type PageEditor struct {
	Pages      *page.Service
	Equipments *equipment.Repository
	Templates  map[string]*template.Template
	Logger     zerolog.Logger
}

// Register registers the page editor routes
func (e *PageEditor) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/pages/new", e.newPage)
	mux.HandleFunc("POST /admin/pages", e.create)
	mux.HandleFunc("GET /admin/pages/{id}", e.edit)
	mux.HandleFunc("POST /admin/pages/{id}", e.save)
	mux.HandleFunc("GET /admin/pages/{id}/delete", e.confirmDelete)
	mux.HandleFunc("POST /admin/pages/{id}/delete", e.delete)
	mux.HandleFunc("POST /admin/pages/{id}/duplicate", e.duplicate)
	mux.HandleFunc("POST /admin/pages/{id}/import", e.importSource)
}

func (e *PageEditor) newPage(w http.ResponseWriter, r *http.Request) {
	e.show(w, r, http.StatusOK, &viewmodels.PageForm{}, "")
}

func (e *PageEditor) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	fields, form, err := readPageFields(r)
	if err == nil {
		var created *models.Page
		created, err = e.Pages.CreatePage(r.Context(), auth.FromContext(r.Context()), fields)
		if err == nil {
			e.Logger.Info().Int64("page", created.ID).Str("slug", created.Slug).Msg("page created")
			http.Redirect(w, r, editURL(created.ID), http.StatusSeeOther)
			return
		}
	}
	if status, msg, ok := formError(err); ok {
		e.show(w, r, status, form, msg)
		return
	}
	failPage(w, r, e.Logger, err)
}

func (e *PageEditor) edit(w http.ResponseWriter, r *http.Request) {
	pg, ok := e.load(w, r)
	if !ok {
		return
	}
	e.show(w, r, http.StatusOK, formFromPage(pg), "")
}

// save stores metadata and the whole block list in one transaction. A
// rejected save re-renders the submitted values.
func (e *PageEditor) save(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	fields, form, err := readPageFields(r)
	form.ID = id
	var blocks []page.BlockInput
	if err == nil {
		blocks, err = readBlocks(r, form)
	}
	if err == nil {
		_, err = e.Pages.SavePage(r.Context(), auth.FromContext(r.Context()), id, fields, blocks)
	}
	if err == nil {
		http.Redirect(w, r, editURL(id), http.StatusSeeOther)
		return
	}
	if status, msg, ok := formError(err); ok {
		e.show(w, r, status, form, msg)
		return
	}
	failPage(w, r, e.Logger, err)
}

func (e *PageEditor) confirmDelete(w http.ResponseWriter, r *http.Request) {
	pg, ok := e.load(w, r)
	if !ok {
		return
	}
	data := viewmodels.New(auth.FromContext(r.Context()))
	data.Confirm = &viewmodels.Confirm{
		Title:   "Delete page",
		Message: fmt.Sprintf("Delete %q and its %d block(s)? This cannot be undone.", pg.Title, len(pg.Blocks)),
		Action:  editURL(pg.ID) + "/delete",
		Cancel:  editURL(pg.ID),
	}
	render(w, e.Logger, e.Templates["confirm.html"], http.StatusOK, data)
}

func (e *PageEditor) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := e.Pages.DeletePage(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		failPage(w, r, e.Logger, err)
		return
	}
	e.Logger.Info().Int64("page", id).Msg("page deleted")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (e *PageEditor) duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	equipmentID, err := formEquipment(r.PostFormValue("equipment_id"))
	if err != nil {
		failPage(w, r, e.Logger, err)
		return
	}
	copied, err := e.Pages.DuplicatePage(r.Context(), auth.FromContext(r.Context()), id, equipmentID)
	if err != nil {
		failPage(w, r, e.Logger, err)
		return
	}
	http.Redirect(w, r, editURL(copied.ID), http.StatusSeeOther)
}

// importSource converts pasted org-mode or HTML into a raw-html block at
// the end of the page.
func (e *PageEditor) importSource(w http.ResponseWriter, r *http.Request) {
	pg, ok := e.load(w, r)
	if !ok {
		return
	}
	admin := auth.FromContext(r.Context())
	src := r.PostFormValue("source")

	var err error
	switch r.PostFormValue("format") {
	case "org":
		_, err = e.Pages.ImportOrg(r.Context(), admin, pg.ID, src)
	case "html":
		_, err = e.Pages.ImportHTML(r.Context(), admin, pg.ID, src)
	default:
		err = apperr.Validation("import format must be org or html")
	}
	if err == nil {
		http.Redirect(w, r, editURL(pg.ID), http.StatusSeeOther)
		return
	}
	if status, msg, ok := formError(err); ok {
		e.show(w, r, status, formFromPage(pg), msg)
		return
	}
	failPage(w, r, e.Logger, err)
}

func (e *PageEditor) show(w http.ResponseWriter, r *http.Request, status int, form *viewmodels.PageForm, msg string) {
	equipments, err := e.Equipments.List(r.Context())
	if err != nil {
		failPage(w, r, e.Logger, err)
		return
	}
	data := viewmodels.New(auth.FromContext(r.Context()))
	data.Form = form
	data.Equipments = equipments
	data.BlockTypes = schema.Types
	data.Error = msg
	render(w, e.Logger, e.Templates["page_edit.html"], status, data)
}

func (e *PageEditor) load(w http.ResponseWriter, r *http.Request) (*models.Page, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	pg, err := e.Pages.GetPage(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		failPage(w, r, e.Logger, err)
		return nil, false
	}
	return pg, true
}

func editURL(id int64) string {
	return "/admin/pages/" + strconv.FormatInt(id, 10)
}

func formFromPage(pg *models.Page) *viewmodels.PageForm {
	form := &viewmodels.PageForm{
		ID:          pg.ID,
		Title:       pg.Title,
		Slug:        pg.Slug,
		IsPublished: pg.IsPublished,
		Order:       pg.Order,
	}
	if pg.Description != nil {
		form.Description = *pg.Description
	}
	if pg.Icon != nil {
		form.Icon = *pg.Icon
	}
	if pg.EquipmentID != nil {
		form.EquipmentID = *pg.EquipmentID
	}
	for _, b := range pg.Blocks {
		form.Blocks = append(form.Blocks, viewmodels.BlockField{Type: b.Type, Order: b.Order, Data: editorData(b)})
	}
	return form
}

// editorData is the textarea text for a stored block.
func editorData(b models.Block) string {
	if b.Type == schema.TypeRawHTML {
		p, _ := b.Payload()
		if h, ok := p.(schema.RawHTML); ok {
			return string(h)
		}
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(b.Data), "", "  "); err != nil {
		return b.Data
	}
	return buf.String()
}

func readPageFields(r *http.Request) (models.PageFields, *viewmodels.PageForm, error) {
	form := &viewmodels.PageForm{
		Title:       r.PostFormValue("title"),
		Slug:        r.PostFormValue("slug"),
		Description: r.PostFormValue("description"),
		Icon:        r.PostFormValue("icon"),
		IsPublished: r.PostFormValue("published") != "",
	}
	f := models.PageFields{
		Title:       &form.Title,
		Slug:        &form.Slug,
		Description: &form.Description,
		Icon:        &form.Icon,
		IsPublished: &form.IsPublished,
	}

	if v := strings.TrimSpace(r.PostFormValue("order")); v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			return f, form, apperr.Validation("order must be a number")
		}
		form.Order = order
		f.Order = &form.Order
	}

	equipmentID, err := formEquipment(r.PostFormValue("equipment_id"))
	if err != nil {
		return f, form, err
	}
	if equipmentID == nil {
		f.ClearEquipment = true
	} else {
		form.EquipmentID = *equipmentID
		f.EquipmentID = equipmentID
	}
	return f, form, nil
}

// formEquipment parses an equipment select value. Empty means none.
func formEquipment(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.Validation("invalid equipment %q", v)
	}
	return &id, nil
}

// readBlocks collects the indexed blocks.N.* fields, drops the ones marked
// for removal and sorts the rest by their order field. add_type appends a
// fresh block of that type.
func readBlocks(r *http.Request, form *viewmodels.PageForm) ([]page.BlockInput, error) {
	count, _ := strconv.Atoi(r.PostFormValue("block_count"))
	for i := 0; i < count; i++ {
		key := "blocks." + strconv.Itoa(i) + "."
		if r.PostFormValue(key+"remove") != "" {
			continue
		}
		field := viewmodels.BlockField{
			Type: schema.Type(r.PostFormValue(key + "type")),
			Data: r.PostFormValue(key + "data"),
		}
		order, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue(key + "order")))
		if err != nil {
			order = i
		}
		field.Order = order
		form.Blocks = append(form.Blocks, field)
	}
	slices.SortStableFunc(form.Blocks, func(a, b viewmodels.BlockField) int { return a.Order - b.Order })

	if t := schema.Type(r.PostFormValue("add_type")); t != "" {
		if !schema.Known(t) {
			return nil, apperr.Validation("unknown block type %q", t)
		}
		b := models.Block{Type: t}
		b.Data, _ = schema.Encode(schema.Default(t))
		form.Blocks = append(form.Blocks, viewmodels.BlockField{Type: t, Data: editorData(b)})
	}

	inputs := make([]page.BlockInput, 0, len(form.Blocks))
	for i := range form.Blocks {
		form.Blocks[i].Order = i
		in := page.BlockInput{Type: form.Blocks[i].Type}
		data := form.Blocks[i].Data
		switch {
		case in.Type == schema.TypeRawHTML:
			raw, _ := json.Marshal(data)
			in.Data = raw
		case strings.TrimSpace(data) != "":
			in.Data = json.RawMessage(data)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// formError reports the status and message for errors the form can show
// next to the submitted values.
func formError(err error) (int, string, bool) {
	var conflict *apperr.ConflictError
	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict, conflict.Message, true
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, message(err, apperr.ErrValidation), true
	}
	return 0, "", false
}

// failPage is writeError for HTML routes.
func failPage(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, apperr.ErrUnauthorized):
		http.Redirect(w, r, "/admin/login", http.StatusFound)
	case errors.Is(err, apperr.ErrValidation):
		http.Error(w, message(err, apperr.ErrValidation), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
