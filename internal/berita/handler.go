package berita

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/rbac"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/view"
)

// Handler serves the news management screens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: mw}
}

// MountRoutes registers news routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageBerita))
		r.Get("/", h.listBerita)
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.createBerita)
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.updateBerita)
		r.Post("/{id}/delete", h.deleteBerita)
		r.Post("/{id}/publish", h.publishBerita)
		r.Post("/{id}/unpublish", h.unpublishBerita)
	})
}

func (h *Handler) listBerita(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pagination := shared.NewPagination(page, 20, 0)
	list, total, err := h.service.List(r.Context(), pagination)
	if err != nil {
		h.logger.Error("list berita", slog.Any("error", err))
		h.render(w, r, "pages/berita/list.html", map[string]any{"Errors": map[string]string{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	pagination = shared.NewPagination(page, 20, int(total))
	h.render(w, r, "pages/berita/list.html", map[string]any{"Berita": list, "Pagination": pagination}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/berita/form.html", map[string]any{"IsEdit": false}, http.StatusOK)
}

func (h *Handler) createBerita(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actorID := actorFromContext(r)
	in := Input{Title: r.PostFormValue("title"), Body: r.PostFormValue("body")}
	if _, err := h.service.Create(r.Context(), actorID, in); err != nil {
		h.logger.Error("create berita", slog.Any("error", err))
		h.redirectWithFlash(w, r, "/berita/new", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/berita", "success", "Berita berhasil dibuat")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load berita", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/berita", "error", shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/berita/form.html", map[string]any{"IsEdit": true, "Article": article}, http.StatusOK)
}

func (h *Handler) updateBerita(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actorID := actorFromContext(r)
	in := Input{Title: r.PostFormValue("title"), Body: r.PostFormValue("body")}
	if _, err := h.service.Update(r.Context(), actorID, id, in); err != nil {
		h.logger.Error("update berita", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/berita/"+strconv.FormatInt(id, 10)+"/edit", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/berita", "success", "Berita berhasil diperbarui")
}

func (h *Handler) deleteBerita(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actorID := actorFromContext(r)
	if err := h.service.Delete(r.Context(), actorID, id); err != nil {
		h.logger.Error("delete berita", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/berita", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/berita", "success", "Berita berhasil dihapus")
}

func (h *Handler) publishBerita(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

func (h *Handler) unpublishBerita(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *Handler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actorID := actorFromContext(r)
	if published {
		err = h.service.Publish(r.Context(), actorID, id)
	} else {
		err = h.service.Unpublish(r.Context(), actorID, id)
	}
	if err != nil {
		h.logger.Error("set berita publication", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/berita", "error", shared.UserSafeMessage(err))
		return
	}
	message := "Berita berhasil dipublikasikan"
	if !published {
		message = "Berita dikembalikan ke draf"
	}
	h.redirectWithFlash(w, r, "/berita", "success", message)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Berita", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func actorFromContext(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
