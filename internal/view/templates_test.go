package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

func TestNewEngineParsesAllPages(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	for _, name := range []string{
		"pages/landing.html",
		"pages/login.html",
		"pages/home.html",
		"pages/roles/list.html",
		"pages/roles/form.html",
		"pages/users/list.html",
		"pages/users/form.html",
		"pages/permissions/list.html",
		"pages/alumni/list.html",
		"pages/berita/list.html",
		"pages/berita/form.html",
		"pages/blacklist/list.html",
	} {
		rec := httptest.NewRecorder()
		err := engine.Render(rec, name, TemplateData{Title: "Uji"})
		assert.NoError(t, err, "render %s", name)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/tidak-ada.html", TemplateData{})
	assert.Error(t, err)
}

func TestRenderIncludesFlash(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/home.html", TemplateData{
		Title: "Dasbor",
		Flash: &shared.FlashMessage{Kind: "success", Message: "Berhasil disimpan"},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "Berhasil disimpan")
	assert.Contains(t, rec.Body.String(), "flash-success")
}
