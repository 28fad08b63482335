package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockdocs/internal/models"
)

func (ts *testServer) form(target string, values url.Values) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, target, "application/x-www-form-urlencoded", []byte(values.Encode()))
}

// createPage submits the new page form and returns the editor URL.
func (ts *testServer) createPage(title, slug string) string {
	rec := ts.form("/admin/pages", url.Values{"title": {title}, "slug": {slug}})
	require.Equal(ts.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	return rec.Header().Get("Location")
}

func (ts *testServer) blocksOf(editURL string) []models.Block {
	id := strings.TrimPrefix(editURL, "/admin/pages/")
	rec := ts.send(http.MethodGet, "/api/pages/"+id, nil)
	require.Equal(ts.t, http.StatusOK, rec.Code)
	return decode[models.Page](ts.t, rec).Blocks
}

func TestAdminFormsRequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{"/admin/pages/new", "/admin/equipments", "/admin/pages/1/delete"} {
		rec := ts.do(http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"), target)
	}

	rec := ts.form("/admin/pages", url.Values{"title": {"X"}, "slug": {"x"}})
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestPageEditorCreate(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	rec := ts.do(http.MethodGet, "/admin/pages/new", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="title"`)
	assert.Contains(t, rec.Body.String(), `action="/admin/pages"`)

	editURL := ts.createPage("Setup Guide", "setup-guide")
	assert.True(t, strings.HasPrefix(editURL, "/admin/pages/"))

	rec = ts.form("/admin/pages", url.Values{"title": {"Other"}, "slug": {"setup-guide"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "is already in use")
	assert.Contains(t, rec.Body.String(), `value="Other"`)

	rec = ts.form("/admin/pages", url.Values{"title": {""}, "slug": {"blank"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")

	rec = ts.do(http.MethodGet, editURL, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Setup Guide"`)
	assert.Contains(t, rec.Body.String(), "/static/editor.js")

	rec = ts.do(http.MethodGet, "/admin/pages/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageEditorSavesBlocks(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	editURL := ts.createPage("Manual", "manual")

	rec := ts.form(editURL, url.Values{
		"title":       {"Manual"},
		"slug":        {"manual"},
		"published":   {"on"},
		"block_count": {"0"},
		"add_type":    {"text"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, editURL, rec.Header().Get("Location"))
	blocks := ts.blocksOf(editURL)
	require.Len(t, blocks, 1)
	assert.Equal(t, "text", string(blocks[0].Type))

	// Order fields decide the final order; raw-html is stored verbatim.
	rec = ts.form(editURL, url.Values{
		"title":          {"Manual"},
		"slug":           {"manual"},
		"published":      {"on"},
		"block_count":    {"2"},
		"blocks.0.type":  {"text"},
		"blocks.0.order": {"1"},
		"blocks.0.data":  {`{"content": "<p>Power on</p>", "align": "left"}`},
		"blocks.1.type":  {"raw-html"},
		"blocks.1.order": {"0"},
		"blocks.1.data":  {"<p>From the manual</p>"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	blocks = ts.blocksOf(editURL)
	require.Len(t, blocks, 2)
	assert.Equal(t, "raw-html", string(blocks[0].Type))
	assert.Equal(t, "<p>From the manual</p>", blocks[0].Data)
	assert.Equal(t, 1, blocks[1].Order)
	assert.Contains(t, blocks[1].Data, "Power on")

	rec = ts.do(http.MethodGet, "/docs/manual", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "From the manual")

	rec = ts.do(http.MethodGet, editURL, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;p&gt;From the manual&lt;/p&gt;")
	assert.Contains(t, rec.Body.String(), `name="blocks.1.data"`)

	rec = ts.form(editURL, url.Values{
		"title":         {"Manual"},
		"slug":          {"manual"},
		"block_count":   {"2"},
		"blocks.0.type": {"raw-html"},
		"blocks.0.data": {"<p>From the manual</p>"},
		"blocks.1.type": {"alert"},
		"blocks.1.data": {`{"variant": "loud"}`},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "loud")
	assert.Len(t, ts.blocksOf(editURL), 2)

	rec = ts.form(editURL, url.Values{
		"title":           {"Manual"},
		"slug":            {"manual"},
		"block_count":     {"2"},
		"blocks.0.type":   {"raw-html"},
		"blocks.0.data":   {"<p>From the manual</p>"},
		"blocks.1.type":   {"text"},
		"blocks.1.data":   {`{"content": "<p>Power on</p>"}`},
		"blocks.1.remove": {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	blocks = ts.blocksOf(editURL)
	require.Len(t, blocks, 1)
	assert.Equal(t, "raw-html", string(blocks[0].Type))
}

func TestPageEditorDeleteNeedsConfirmation(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	editURL := ts.createPage("Old Page", "old-page")

	rec := ts.do(http.MethodGet, editURL+"/delete", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This cannot be undone")
	assert.Contains(t, rec.Body.String(), `action="`+editURL+`/delete"`)
	assert.Len(t, ts.blocksOf(editURL), 0)

	rec = ts.form(editURL+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = ts.do(http.MethodGet, editURL, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodGet, editURL+"/delete", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageEditorImportAndDuplicate(t *testing.T) {
	ts := newTestServer(t)
	ts.login()
	editURL := ts.createPage("Manual", "manual")

	rec := ts.form(editURL+"/import", url.Values{"format": {"html"}, "source": {`<p style="color:red">Imported</p>`}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	blocks := ts.blocksOf(editURL)
	require.Len(t, blocks, 1)
	assert.Equal(t, "<p>Imported</p>", blocks[0].Data)

	rec = ts.form(editURL+"/import", url.Values{"format": {"org"}, "source": {"* Wiring"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Len(t, ts.blocksOf(editURL), 2)

	rec = ts.form(editURL+"/import", url.Values{"format": {"docx"}, "source": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "import format must be org or html")

	rec = ts.form(editURL+"/duplicate", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	copyURL := rec.Header().Get("Location")
	assert.NotEqual(t, editURL, copyURL)
	assert.Len(t, ts.blocksOf(copyURL), 2)
}

func TestEquipmentEditor(t *testing.T) {
	ts := newTestServer(t)
	ts.login()

	rec := ts.form("/admin/equipments", url.Values{"name": {"JC450"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	rec = ts.form("/admin/equipments", url.Values{"name": {"JC181"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = ts.form("/admin/equipments", url.Values{"name": {"JC450"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	rec = ts.form("/admin/equipments", url.Values{"name": {" "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	equipments := decode[[]models.Equipment](t, ts.send(http.MethodGet, "/api/equipments", nil))
	require.Len(t, equipments, 2)
	jc, other := equipments[0], equipments[1]
	require.Equal(t, "JC450", jc.Name)

	rec = ts.form("/admin/equipments/"+itoa(jc.ID), url.Values{"name": {"JC451"}, "icon": {"🔧"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	rec = ts.do(http.MethodGet, "/admin/equipments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="JC451"`)

	rec = ts.form("/admin/pages", url.Values{"title": {"Wiring"}, "slug": {"wiring"}, "equipment_id": {itoa(jc.ID)}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	ts.createPage("General Notes", "general-notes")

	rec = ts.do(http.MethodGet, "/admin?equipment="+itoa(jc.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wiring")
	assert.NotContains(t, rec.Body.String(), "General Notes")

	rec = ts.do(http.MethodGet, "/admin/equipments/"+itoa(jc.ID)+"/delete", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot be deleted until they are moved")
	assert.NotContains(t, rec.Body.String(), "/admin/equipments/"+itoa(jc.ID)+"/delete")

	rec = ts.form("/admin/equipments/"+itoa(jc.ID)+"/delete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 page(s) still reference it")

	rec = ts.do(http.MethodGet, "/admin/equipments/"+itoa(other.ID)+"/delete", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/equipments/`+itoa(other.ID)+`/delete"`)

	rec = ts.form("/admin/equipments/"+itoa(other.ID)+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, decode[[]models.Equipment](t, ts.send(http.MethodGet, "/api/equipments", nil)), 1)
}
