// Package guard is the role-based access check gating portal routes.
// One declarative table maps route prefixes to required roles; one
// decision function consumes it. No route does its own role matching.
package guard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/estately/portal-server-go/internal/httputil"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/session"
)

const (
	// SessionCookie is the browser session cookie name.
	SessionCookie = "portal_session"
	// HomePath is the fallback redirect for authenticated users whose
	// role does not match the route.
	HomePath = "/"

	SessionMaxAge = 24 * time.Hour
)

type Action int

const (
	// ActionRender lets the request through.
	ActionRender Action = iota
	// ActionWait means the session state could not be determined yet;
	// no redirect may happen until it can.
	ActionWait
	// ActionRedirect sends the browser elsewhere.
	ActionRedirect
)

// Decision is the guard verdict for one request.
type Decision struct {
	Action     Action
	RedirectTo string
}

// Decide applies the access rules for a session against the roles a
// route requires:
//   - Unknown session state: wait, never redirect early.
//   - Anonymous with roles required: redirect to the login page of the
//     first required role.
//   - Authenticated with a role outside the set: redirect home.
//   - Otherwise: render.
func Decide(sess session.Session, required []model.Role) Decision {
	if len(required) == 0 {
		return Decision{Action: ActionRender}
	}

	switch sess.State {
	case session.StateUnknown:
		return Decision{Action: ActionWait}
	case session.StateAnonymous:
		return Decision{Action: ActionRedirect, RedirectTo: required[0].LoginPath()}
	}

	for _, role := range required {
		if sess.Identity != nil && sess.Identity.Role == role {
			return Decision{Action: ActionRender}
		}
	}
	return Decision{Action: ActionRedirect, RedirectTo: HomePath}
}

// Rule binds a route prefix to the roles allowed through it.
type Rule struct {
	Prefix string
	Roles  []model.Role
}

// Table is the single source of truth for which roles each route
// requires. Longest matching prefix wins; unmatched paths are public.
type Table []Rule

func (t Table) RolesFor(path string) []model.Role {
	var best *Rule
	for i := range t {
		if strings.HasPrefix(path, t[i].Prefix) {
			if best == nil || len(t[i].Prefix) > len(best.Prefix) {
				best = &t[i]
			}
		}
	}
	if best == nil {
		return nil
	}
	return best.Roles
}

type sessionContextKey string

const sessionKey sessionContextKey = "portalSession"

// SessionFrom returns the resolved session stored by the middleware.
func SessionFrom(ctx context.Context) session.Session {
	if sess, ok := ctx.Value(sessionKey).(session.Session); ok {
		return sess
	}
	return session.Session{State: session.StateAnonymous}
}

// Middleware resolves the browser session once per request and applies
// the table. It re-evaluates on every request; the guard is not a
// one-time gate.
type Middleware struct {
	store *session.Store
	table Table
}

func NewMiddleware(store *session.Store, table Table) *Middleware {
	return &Middleware{store: store, table: table}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		browserToken := ""
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			browserToken = cookie.Value
		}

		ctx := session.WithBrowserToken(r.Context(), browserToken)
		sess := m.store.Resolve(ctx, browserToken)
		required := m.table.RolesFor(r.URL.Path)

		switch decision := Decide(sess, required); decision.Action {
		case ActionWait:
			w.Header().Set("Retry-After", "1")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "loading",
			})
			return
		case ActionRedirect:
			log.Debug().
				Str("path", r.URL.Path).
				Str("state", sess.State.String()).
				Str("redirect", decision.RedirectTo).
				Msg("route guard redirect")

			status := http.StatusUnauthorized
			if sess.State == session.StateAuthenticated {
				status = http.StatusForbidden
			}
			httputil.WriteJSON(w, status, map[string]string{
				"error":    "Access denied",
				"redirect": decision.RedirectTo,
			})
			return
		}

		ctx = context.WithValue(ctx, sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
