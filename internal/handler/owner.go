package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/listing"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/upstream"
)

// OwnerHandler proxies listing management for property owners. The
// route guard has already established an owner session by the time any
// of these run.
type OwnerHandler struct {
	client   *upstream.Client
	pageSize int
}

func NewOwnerHandler(client *upstream.Client, pageSize int) *OwnerHandler {
	return &OwnerHandler{client: client, pageSize: pageSize}
}

func (h *OwnerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/properties", h.ListProperties)
	r.Post("/properties", h.CreateProperty)
	r.Get("/properties/{id}", h.GetProperty)
	r.Put("/properties/{id}", h.UpdateProperty)
	r.Delete("/properties/{id}", h.DeleteProperty)
	r.Get("/offers", h.ListOffers)
	r.Patch("/offers/{id}", h.UpdateOfferStatus)

	return r
}

func (h *OwnerHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	h.listPage(w, r, "/owners/properties")
}

func (h *OwnerHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var form PropertyForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, apperr.ValidationError("invalid request body"))
		return
	}
	if err := form.Validate(); err != nil {
		writeError(w, err)
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodPost, "/owners/properties", bearerToken(r), form)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"data": envelope.Data})
}

// GetProperty loads one of the owner's own listings for the edit form.
func (h *OwnerHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodGet, "/owners/properties/"+strconv.FormatInt(id, 10), bearerToken(r), nil)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": envelope.Data})
}

func (h *OwnerHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var form PropertyForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, apperr.ValidationError("invalid request body"))
		return
	}
	if err := form.Validate(); err != nil {
		writeError(w, err)
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodPut, "/owners/properties/"+strconv.FormatInt(id, 10), bearerToken(r), form)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": envelope.Data})
}

func (h *OwnerHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.client.JSON(r.Context(), http.MethodDelete, "/owners/properties/"+strconv.FormatInt(id, 10), bearerToken(r), nil); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *OwnerHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	fetch := listing.UpstreamFetcher[model.Offer](h.client, "/owners/offers", bearerToken(r))
	pager := listing.NewPager(fetch, h.pageSize)
	if err := pager.GoTo(r.Context(), page); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	snap := pager.Snapshot()
	items := snap.Items
	if items == nil {
		items = []model.Offer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": items,
		"meta": model.PageMeta{
			TotalPages:    snap.TotalPages,
			CurrentPage:   snap.Page,
			TotalElements: snap.TotalElements,
		},
	})
}

// UpdateOfferStatus accepts or rejects a pending offer.
func (h *OwnerHandler) UpdateOfferStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Status model.OfferStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperr.ValidationError("invalid request body"))
		return
	}
	if body.Status != model.OfferStatusAccepted && body.Status != model.OfferStatusRejected {
		writeError(w, apperr.InvalidInput("status", "must be accepted or rejected"))
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodPatch, "/owners/offers/"+strconv.FormatInt(id, 10), bearerToken(r), body)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": envelope.Data})
}

func (h *OwnerHandler) listPage(w http.ResponseWriter, r *http.Request, endpoint string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	fetch := listing.UpstreamFetcher[model.Property](h.client, endpoint, bearerToken(r))
	pager := listing.NewPager(fetch, h.pageSize)
	if err := pager.GoTo(r.Context(), page); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeSnapshot(w, pager.Snapshot())
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("id", "must be a positive integer")
	}
	return id, nil
}

func parsePage(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, apperr.InvalidInput("page", "must be a non-negative integer")
	}
	return page, nil
}
