package viewmodels

import (
	"html/template"

	"blockdocs/internal/catalog"
	"blockdocs/internal/models"
	"blockdocs/internal/schema"
)

// PageData is a unified struct to hold all possible data for any page.
type PageData struct {
	Groups     []catalog.Group
	Page       *models.Page
	Content    template.HTML
	Related    []models.Page // Other published pages for the doc sidebar
	Pages      []models.Page
	Equipments []models.Equipment
	Error      string
	Admin      *models.AdminUser
	IsLoggedIn bool

	// Admin forms
	Form            *PageForm
	BlockTypes      []schema.Type
	Confirm         *Confirm
	EquipmentFilter int64
}

// PageForm holds the page editor's values, loaded from the page or echoed
// back after a rejected save.
type PageForm struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	Icon        string
	EquipmentID int64
	IsPublished bool
	Order       int
	Blocks      []BlockField
}

// BlockField is one block row of the editor. Data is indented JSON, or the
// markup itself for raw-html blocks.
type BlockField struct {
	Type  schema.Type
	Order int
	Data  string
}

// Confirm is a destructive action waiting for a second click.
type Confirm struct {
	Title   string
	Message string
	Action  string
	Cancel  string
}

// New fills in the signed-in admin, if any.
func New(admin *models.AdminUser) PageData {
	return PageData{Admin: admin, IsLoggedIn: admin != nil}
}
