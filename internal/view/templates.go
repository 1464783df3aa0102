package view

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
	"github.com/Satu-Teladan-App/admin-dashboard/web"
)

// Engine renders HTML templates. Each page is parsed into its own clone of
// the base layout so identically named blocks in different pages do not
// collide.
type Engine struct {
	pages map[string]*template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Data        any
}

// NewEngine parses templates at startup.
func NewEngine() (*Engine, error) {
	titleCaser := cases.Title(language.Indonesian)
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		// permissionLabel turns a permission key such as "manage_berita"
		// into a display label ("Manage Berita").
		"permissionLabel": func(name string) string {
			return titleCaser.String(strings.ReplaceAll(name, "_", " "))
		},
	}

	base, err := template.New("base").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse layouts: %w", err)
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(web.Templates, "templates/pages", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		clone, err := base.Clone()
		if err != nil {
			return err
		}
		page, err := clone.ParseFS(web.Templates, path)
		if err != nil {
			return fmt.Errorf("view: parse %s: %w", path, err)
		}
		pages[strings.TrimPrefix(path, "templates/")] = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Engine{pages: pages}, nil
}

// Render executes the named page inside the base layout.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	page, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return page.ExecuteTemplate(w, "base.html", data)
}
