package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/audit"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/upstream"
)

// AdminHandler proxies the owner-account management screens. Unlike
// the listing feeds, the admin endpoint paginates with limit and page.
type AdminHandler struct {
	client *upstream.Client
}

func NewAdminHandler(client *upstream.Client) *AdminHandler {
	return &AdminHandler{client: client}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/owners", h.ListOwners)
	r.Patch("/owners/{id}", h.UpdateOwner)
	r.Delete("/owners/{id}", h.DeleteOwner)

	return r
}

func (h *AdminHandler) ListOwners(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r)

	query := "/admins/owners?limit=" + strconv.Itoa(params.Limit) + "&page=" + strconv.Itoa(params.Page)
	envelope, err := h.client.JSON(r.Context(), http.MethodGet, query, bearerToken(r), nil)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	owners, err := decodeData[[]model.User](envelope)
	if err != nil {
		writeError(w, err)
		return
	}
	if owners == nil {
		owners = []model.User{}
	}

	meta := model.PageMeta{TotalPages: 1, CurrentPage: params.Page, TotalElements: len(owners)}
	if envelope.Meta != nil {
		meta = *envelope.Meta
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": owners,
		"meta": meta,
	})
}

// UpdateOwner forwards approval and activation changes. At least one
// of the two fields must be present.
func (h *AdminHandler) UpdateOwner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Approved *bool `json:"approved,omitempty"`
		IsActive *bool `json:"isActive,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperr.ValidationError("invalid request body"))
		return
	}
	if body.Approved == nil && body.IsActive == nil {
		writeError(w, apperr.MissingRequired("approved or isActive"))
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodPatch, "/admins/owners/"+strconv.FormatInt(id, 10), bearerToken(r), body)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	if body.Approved != nil && *body.Approved {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventOwnerApproved, UserID: id})
	}
	if body.IsActive != nil && !*body.IsActive {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventOwnerDeactivated, UserID: id})
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": envelope.Data})
}

func (h *AdminHandler) DeleteOwner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.client.JSON(r.Context(), http.MethodDelete, "/admins/owners/"+strconv.FormatInt(id, 10), bearerToken(r), nil); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventOwnerDeleted, UserID: id})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
