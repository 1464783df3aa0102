package rbac

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Middleware wires permission checks for HTTP handlers. These run after the
// Guard has admitted the request and gate individual routes on specific
// permission names.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := dedupePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := m.currentUserID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			granted := m.Service.PermissionsFor(r.Context(), userID)
			for _, p := range required {
				if _, ok := granted[p]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	required := dedupePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := m.currentUserID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			granted := m.Service.PermissionsFor(r.Context(), userID)
			for _, p := range required {
				if _, ok := granted[p]; !ok {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	return principalFromSession(shared.SessionFromContext(r.Context()), m.Logger)
}

// dedupePermissions trims and deduplicates the required names. Matching stays
// case-sensitive: permission names are exact semantic keys.
func dedupePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	deduped := make([]string, 0, len(unique))
	for p := range unique {
		deduped = append(deduped, p)
	}
	return deduped
}
