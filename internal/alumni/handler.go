package alumni

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/rbac"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/view"
)

// Handler serves the alumni verification screens.
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

// MountRoutes registers alumni routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermManageAlumni))
		r.Get("/", h.listAlumni)
		r.Post("/{id}/verify", h.verifyAlumni)
		r.Post("/{id}/unverify", h.unverifyAlumni)
	})
}

func (h *Handler) listAlumni(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	onlyUnverified := r.URL.Query().Get("filter") == "unverified"
	pagination := shared.NewPagination(page, 20, 0)

	list, total, err := h.service.List(r.Context(), pagination, onlyUnverified)
	if err != nil {
		h.logger.Error("list alumni", slog.Any("error", err))
		h.render(w, r, map[string]any{"Errors": map[string]string{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	pagination = shared.NewPagination(page, 20, int(total))
	h.render(w, r, map[string]any{
		"Alumni":         list,
		"Pagination":     pagination,
		"OnlyUnverified": onlyUnverified,
	}, http.StatusOK)
}

func (h *Handler) verifyAlumni(w http.ResponseWriter, r *http.Request) {
	h.setVerified(w, r, true)
}

func (h *Handler) unverifyAlumni(w http.ResponseWriter, r *http.Request) {
	h.setVerified(w, r, false)
}

func (h *Handler) setVerified(w http.ResponseWriter, r *http.Request, verified bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	actorID := actorFromContext(r)
	if verified {
		err = h.service.Verify(r.Context(), actorID, id)
	} else {
		err = h.service.Unverify(r.Context(), actorID, id)
	}
	if err != nil {
		h.logger.Error("set alumni verification", slog.Int64("id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/alumni", "error", shared.UserSafeMessage(err))
		return
	}
	message := "Alumni berhasil diverifikasi"
	if !verified {
		message = "Verifikasi alumni dibatalkan"
	}
	h.redirectWithFlash(w, r, "/alumni", "success", message)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Alumni", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/alumni/list.html", viewData); err != nil {
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
