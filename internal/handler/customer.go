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

// CustomerHandler proxies offers and favorites for buyers.
type CustomerHandler struct {
	client   *upstream.Client
	pageSize int
}

func NewCustomerHandler(client *upstream.Client, pageSize int) *CustomerHandler {
	return &CustomerHandler{client: client, pageSize: pageSize}
}

func (h *CustomerHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/offers", h.ListOffers)
	r.Post("/offers", h.CreateOffer)
	r.Delete("/offers/{id}", h.WithdrawOffer)
	r.Get("/favorites", h.ListFavorites)
	r.Post("/favorites", h.ToggleFavorite)

	return r
}

func (h *CustomerHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	fetch := listing.UpstreamFetcher[model.Offer](h.client, "/customers/offers", bearerToken(r))
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

func (h *CustomerHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var form OfferForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, apperr.ValidationError("invalid request body"))
		return
	}
	if err := form.Validate(); err != nil {
		writeError(w, err)
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodPost, "/customers/offers", bearerToken(r), form)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"data": envelope.Data})
}

// WithdrawOffer deletes a pending offer. Accepted and rejected offers
// are immutable; the marketplace enforces that and the error passes
// through.
func (h *CustomerHandler) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.client.JSON(r.Context(), http.MethodDelete, "/customers/offers/"+strconv.FormatInt(id, 10), bearerToken(r), nil); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CustomerHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	fetch := listing.UpstreamFetcher[model.Property](h.client, "/customers/favorites", bearerToken(r))
	pager := listing.NewPager(fetch, h.pageSize)
	if err := pager.GoTo(r.Context(), page); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeSnapshot(w, pager.Snapshot())
}

// ToggleFavorite adds the property to the customer's favorites, or
// removes it when already present. The marketplace decides which.
func (h *CustomerHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PropertyID int64 `json:"propertyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperr.ValidationError("invalid request body"))
		return
	}
	if body.PropertyID <= 0 {
		writeError(w, apperr.MissingRequired("propertyId"))
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodPost, "/customers/favorites", bearerToken(r), body)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": envelope.Data})
}
