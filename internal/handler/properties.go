package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/guard"
	"github.com/estately/portal-server-go/internal/listing"
	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/search"
	"github.com/estately/portal-server-go/internal/session"
	"github.com/estately/portal-server-go/internal/upstream"
)

// PropertyHandler serves the public listing search and the featured
// feed on the landing page. Filters arrive as query parameters and are
// re-encoded for the marketplace; unset filters are never forwarded.
type PropertyHandler struct {
	client       *upstream.Client
	pageSize     int
	featuredSize int
}

func NewPropertyHandler(client *upstream.Client, pageSize, featuredSize int) *PropertyHandler {
	return &PropertyHandler{
		client:       client,
		pageSize:     pageSize,
		featuredSize: featuredSize,
	}
}

func (h *PropertyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Search)
	r.Get("/featured", h.Featured)
	r.Get("/{id}", h.Detail)

	return r
}

func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	criteria, err := search.ParseValues(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := criteria.Validate(); err != nil {
		writeError(w, err)
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 {
			writeError(w, apperr.InvalidInput("page", "must be a non-negative integer"))
			return
		}
	}

	pager := h.newPager(r, h.pageSize)
	pager.SetCriteria(criteria)
	if err := pager.GoTo(r.Context(), page); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeSnapshot(w, pager.Snapshot())
}

// Featured returns the first page of unfiltered listings for the
// landing page.
func (h *PropertyHandler) Featured(w http.ResponseWriter, r *http.Request) {
	pager := h.newPager(r, h.featuredSize)
	if err := pager.Fetch(r.Context()); err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeSnapshot(w, pager.Snapshot())
}

func (h *PropertyHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, apperr.InvalidInput("id", "must be a positive integer"))
		return
	}

	envelope, err := h.client.JSON(r.Context(), http.MethodGet, "/customers/properties/"+strconv.FormatInt(id, 10), bearerToken(r), nil)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": envelope.Data})
}

func (h *PropertyHandler) newPager(r *http.Request, pageSize int) *listing.Pager[model.Property] {
	fetch := listing.UpstreamFetcher[model.Property](h.client, "/customers/properties", bearerToken(r))
	return listing.NewPager(fetch, pageSize)
}

func writeSnapshot(w http.ResponseWriter, snap listing.Snapshot[model.Property]) {
	items := snap.Items
	if items == nil {
		items = []model.Property{}
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

// bearerToken returns the upstream token of the authenticated session,
// or the empty string for anonymous visitors.
func bearerToken(r *http.Request) string {
	sess := guard.SessionFrom(r.Context())
	if sess.State == session.StateAuthenticated {
		return sess.Identity.Token
	}
	return ""
}

// upstreamError converts raw upstream failures into the error
// envelope. Messages from the marketplace pass through untouched.
func upstreamError(err error) error {
	if _, ok := apperr.AsAppError(err); ok {
		return err
	}
	var httpErr *upstream.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case http.StatusNotFound:
			return apperr.New(apperr.ErrCodeNotFound, httpErr.Message())
		case http.StatusUnauthorized:
			return apperr.Unauthorized(httpErr.Message())
		case http.StatusForbidden:
			return apperr.Forbidden(httpErr.Message())
		}
		return apperr.New(apperr.ErrCodeUpstream, httpErr.Message()).WithDetails(map[string]int{"status": httpErr.Status})
	}
	return apperr.Upstream(err)
}

func decodeData[T any](envelope *model.Envelope) (T, error) {
	var out T
	if err := json.Unmarshal(envelope.Data, &out); err != nil {
		return out, apperr.Upstream(err)
	}
	return out, nil
}
