// Package listing is the paginated list controller shared by every
// property and offer feed: one filter-criteria snapshot, one page
// cursor, page transitions with boundary clamping, and a generation
// counter so a superseded fetch can never overwrite a newer one.
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/search"
	"github.com/estately/portal-server-go/internal/upstream"
)

// ErrSuperseded reports that a fetch completed after a newer one was
// issued; its response was discarded.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

const unknownTotal = -1

// FetchFunc loads one page of items for the given query parameters.
type FetchFunc[T any] func(ctx context.Context, query url.Values) ([]T, model.PageMeta, error)

// UpstreamFetcher adapts a marketplace list endpoint into a FetchFunc.
// The bearer token is fixed per fetcher since criteria and token both
// belong to one resolved session.
func UpstreamFetcher[T any](client *upstream.Client, endpoint, bearer string) FetchFunc[T] {
	return func(ctx context.Context, query url.Values) ([]T, model.PageMeta, error) {
		path := endpoint
		if encoded := query.Encode(); encoded != "" {
			path += "?" + encoded
		}

		envelope, err := client.JSON(ctx, http.MethodGet, path, bearer, nil)
		if err != nil {
			return nil, model.PageMeta{}, err
		}

		var items []T
		if len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, &items); err != nil {
				return nil, model.PageMeta{}, err
			}
		}

		meta := model.PageMeta{TotalPages: 1, TotalElements: len(items)}
		if envelope.Meta != nil {
			meta = *envelope.Meta
		}
		return items, meta, nil
	}
}

// Pager drives one paginated feed. Page indices are zero-based
// throughout; the UI adds one for display.
type Pager[T any] struct {
	fetch    FetchFunc[T]
	pageSize int

	mu         sync.Mutex
	criteria   search.Criteria
	page       int
	totalPages int
	total      int
	items      []T
	generation uint64
}

func NewPager[T any](fetch FetchFunc[T], pageSize int) *Pager[T] {
	return &Pager[T]{
		fetch:      fetch,
		pageSize:   pageSize,
		totalPages: unknownTotal,
	}
}

// SetCriteria replaces the criteria snapshot wholesale and moves the
// cursor back to the first page. It does not fetch.
func (p *Pager[T]) SetCriteria(criteria search.Criteria) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.criteria = criteria
	p.page = 0
}

// Fetch loads the current page. Items and total-page count are
// replaced together; a renderer can never observe one without the
// other. If a newer fetch was issued while this one was in flight,
// its response is dropped and ErrSuperseded returned.
func (p *Pager[T]) Fetch(ctx context.Context) error {
	p.mu.Lock()
	p.generation++
	generation := p.generation
	query := p.criteria.Values()
	query.Set("page", strconv.Itoa(p.page))
	query.Set("size", strconv.Itoa(p.pageSize))
	p.mu.Unlock()

	items, meta, err := p.fetch(ctx, query)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.generation != generation {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}

	p.items = items
	p.totalPages = meta.TotalPages
	p.total = meta.TotalElements
	if p.totalPages > 0 && p.page > p.totalPages-1 {
		p.page = p.totalPages - 1
	}
	return nil
}

// GoTo clamps the target index to the known page range and fetches it.
// Moving to the page already shown is a no-op.
func (p *Pager[T]) GoTo(ctx context.Context, target int) error {
	p.mu.Lock()
	clamped := p.clampLocked(target)
	if clamped == p.page && p.items != nil {
		p.mu.Unlock()
		return nil
	}
	p.page = clamped
	p.mu.Unlock()

	return p.Fetch(ctx)
}

// Next advances one page; at the last page it is a no-op.
func (p *Pager[T]) Next(ctx context.Context) error {
	p.mu.Lock()
	target := p.page + 1
	p.mu.Unlock()
	return p.GoTo(ctx, target)
}

// Previous steps back one page; at the first page it is a no-op.
func (p *Pager[T]) Previous(ctx context.Context) error {
	p.mu.Lock()
	target := p.page - 1
	p.mu.Unlock()
	return p.GoTo(ctx, target)
}

func (p *Pager[T]) clampLocked(target int) int {
	if target < 0 {
		return 0
	}
	if p.totalPages != unknownTotal && p.totalPages > 0 && target > p.totalPages-1 {
		return p.totalPages - 1
	}
	return target
}

// Snapshot is the atomically consistent view for rendering.
type Snapshot[T any] struct {
	Items         []T
	Page          int
	TotalPages    int
	TotalElements int
}

func (p *Pager[T]) Snapshot() Snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	totalPages := p.totalPages
	if totalPages == unknownTotal {
		totalPages = 0
	}
	return Snapshot[T]{
		Items:         p.items,
		Page:          p.page,
		TotalPages:    totalPages,
		TotalElements: p.total,
	}
}
