package rbac

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

const (
	loginPath   = "/auth/login"
	landingPath = "/"
)

// Guard gates every request into the protected area. It is the authoritative
// enforcement point; the capability API and template helpers only drive
// conditional UI on top of it.
type Guard struct {
	Service  *Service
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// Protect decides allow, redirect-to-sign-in, or deny-with-sign-out for each
// request. The decision is recomputed on every request so a role revoked
// mid-session takes effect on the next navigation.
func (g Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		userID, ok := principalFromSession(sess, g.Logger)
		if !ok {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		roles, err := g.Service.RolesFor(r.Context(), userID)
		if err != nil {
			// Fail closed: deny without touching the session, the store may
			// recover on the next request.
			if g.Logger != nil {
				g.Logger.Error("guard: resolve roles", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		if len(roles) == 0 {
			// A non-admin identity must not retain a live session against the
			// protected area: sign out before redirecting so every subsequent
			// request re-evaluates from unauthenticated.
			g.Sessions.Destroy(sess)
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RedirectAuthenticated wraps the sign-in page: a principal that already
// holds a role is sent to the landing page instead of re-authenticating. A
// principal without roles may render the page normally — they are attempting
// to authenticate, not browsing a protected resource.
func (g Guard) RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		userID, ok := principalFromSession(sess, g.Logger)
		if ok {
			roles, err := g.Service.RolesFor(r.Context(), userID)
			if err == nil && len(roles) > 0 {
				http.Redirect(w, r, landingPath, http.StatusSeeOther)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// principalFromSession resolves the authenticated principal from the request
// session. Absent, empty, and malformed identities all resolve to
// unauthenticated; malformed ones are additionally logged.
func principalFromSession(sess *shared.Session, logger *slog.Logger) (int64, bool) {
	if sess == nil || sess.Destroyed() {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if logger != nil {
			logger.Error("guard: malformed principal id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
