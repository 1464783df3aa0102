package rbac

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/platform/httpx"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// CapabilityHandler exposes the signed-in user's own roles and permissions as
// JSON so pages can hide controls the user is not entitled to use. This is a
// defense-in-depth convenience: the Guard and the permission middleware remain
// the authoritative gates, and every response here fails closed to empty.
type CapabilityHandler struct {
	logger  *slog.Logger
	service *Service
}

// NewCapabilityHandler builds a CapabilityHandler.
func NewCapabilityHandler(logger *slog.Logger, service *Service) *CapabilityHandler {
	return &CapabilityHandler{logger: logger, service: service}
}

// MountRoutes registers the capability endpoints.
func (h *CapabilityHandler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.myPermissions)
	r.Get("/roles", h.myRoles)
}

type permissionsResponse struct {
	Permissions []string `json:"permissions"`
}

type roleSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type rolesResponse struct {
	Roles   []roleSummary `json:"roles"`
	IsAdmin bool          `json:"is_admin"`
}

func (h *CapabilityHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	resp := permissionsResponse{Permissions: []string{}}
	if userID, ok := principalFromSession(shared.SessionFromContext(r.Context()), h.logger); ok {
		for name := range h.service.PermissionsFor(r.Context(), userID) {
			resp.Permissions = append(resp.Permissions, name)
		}
		sort.Strings(resp.Permissions)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *CapabilityHandler) myRoles(w http.ResponseWriter, r *http.Request) {
	resp := rolesResponse{Roles: []roleSummary{}}
	userID, ok := principalFromSession(shared.SessionFromContext(r.Context()), h.logger)
	if !ok {
		httpx.JSON(w, http.StatusOK, resp)
		return
	}
	roles, err := h.service.RolesFor(r.Context(), userID)
	if err != nil {
		// Fail closed to "not an admin" rather than blocking the page.
		h.logger.Error("capability: resolve roles", slog.Any("error", err))
		httpx.JSON(w, http.StatusOK, resp)
		return
	}
	for _, role := range roles {
		resp.Roles = append(resp.Roles, roleSummary{ID: role.ID, Name: role.Name})
	}
	resp.IsAdmin = len(roles) > 0
	httpx.JSON(w, http.StatusOK, resp)
}
