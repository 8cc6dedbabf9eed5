package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/audit"
	"github.com/estately/portal-server-go/internal/guard"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/session"
	"github.com/estately/portal-server-go/internal/upstream"
)

// AuthHandler exposes login, signup and logout for all three account
// roles. The marketplace owns the credentials; this handler only turns
// a successful upstream login into a browser session cookie.
type AuthHandler struct {
	store        *session.Store
	loginLimiter func(http.Handler) http.Handler
	isProduction bool
}

func NewAuthHandler(store *session.Store, loginLimiter func(http.Handler) http.Handler, isProduction bool) *AuthHandler {
	return &AuthHandler{
		store:        store,
		loginLimiter: loginLimiter,
		isProduction: isProduction,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	if h.loginLimiter != nil {
		r.With(h.loginLimiter).Post("/login/{role}", h.Login)
	} else {
		r.Post("/login/{role}", h.Login)
	}
	r.Post("/register/{role}", h.Register)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)

	return r
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	role := model.Role(chi.URLParam(r, "role"))
	if !role.Valid() {
		writeError(w, apperr.InvalidInput("role", "unknown role"))
		return
	}

	var form CredentialsForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, apperr.ValidationError("invalid request body"))
		return
	}
	if err := form.Validate(); err != nil {
		writeError(w, err)
		return
	}

	browserToken, identity, err := h.store.Login(r.Context(), form.Email, form.Password, role)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type: audit.EventLoginFailure,
			Role: string(role),
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventLoginSuccess,
		UserID: identity.ID,
		Role:   string(role),
	})

	guard.SetSessionCookie(w, browserToken, h.isProduction)
	writeJSON(w, http.StatusOK, map[string]any{
		"user": formatIdentity(identity),
	})
}

// Register accepts either a JSON body or a multipart form with an
// optional avatar file. It never logs the new account in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	role := model.Role(chi.URLParam(r, "role"))
	if !role.Valid() {
		writeError(w, apperr.InvalidInput("role", "unknown role"))
		return
	}

	params, err := h.parseRegisterRequest(r, role)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.Register(r.Context(), params); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type: audit.EventRegister,
		Role: string(role),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "success",
		"redirect": role.LoginPath(),
	})
}

func (h *AuthHandler) parseRegisterRequest(r *http.Request, role model.Role) (session.RegisterParams, error) {
	params := session.RegisterParams{Role: role}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			return params, apperr.ValidationError("invalid multipart form")
		}
		params.Email = r.FormValue("email")
		params.Password = r.FormValue("password")
		params.Name = r.FormValue("name")

		if file, header, err := r.FormFile("avatar"); err == nil {
			params.Avatar = &upstream.UploadFile{Name: header.Filename, Content: file}
		}
	} else {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return params, apperr.ValidationError("invalid request body")
		}
		params.Email = body.Email
		params.Password = body.Password
		params.Name = body.Name
	}

	if strings.TrimSpace(params.Email) == "" {
		return params, apperr.MissingRequired("email")
	}
	if params.Password == "" {
		return params, apperr.MissingRequired("password")
	}
	if strings.TrimSpace(params.Name) == "" {
		return params, apperr.MissingRequired("name")
	}
	return params, nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(guard.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.store.Logout(r.Context(), cookie.Value); err != nil {
			log.Warn().Err(err).Msg("failed to delete session on logout")
		}
	}

	sess := guard.SessionFrom(r.Context())
	if sess.Identity != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:   audit.EventLogout,
			UserID: sess.Identity.ID,
			Role:   string(sess.Identity.Role),
		})
	}

	guard.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := guard.SessionFrom(r.Context())
	if sess.State != session.StateAuthenticated {
		writeError(w, apperr.Unauthorized("Not authenticated"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": formatIdentity(sess.Identity),
	})
}
