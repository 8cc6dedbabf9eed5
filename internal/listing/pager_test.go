package listing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estately/portal-server-go/internal/model"
	"github.com/estately/portal-server-go/internal/search"
	"github.com/estately/portal-server-go/internal/upstream"
)

type item struct {
	ID int `json:"id"`
}

// pageFetcher serves deterministic pages of fake items.
func pageFetcher(totalPages int, recorded *[]url.Values) FetchFunc[item] {
	var mu sync.Mutex
	return func(ctx context.Context, query url.Values) ([]item, model.PageMeta, error) {
		mu.Lock()
		if recorded != nil {
			*recorded = append(*recorded, query)
		}
		mu.Unlock()

		pageIdx := 0
		if raw := query.Get("page"); raw != "" {
			pageIdx = atoi(raw)
		}
		return []item{{ID: pageIdx}}, model.PageMeta{
			TotalPages:    totalPages,
			CurrentPage:   pageIdx,
			TotalElements: totalPages,
		}, nil
	}
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("combines criteria with page and size parameters", func(t *testing.T) {
		var queries []url.Values
		pager := NewPager(pageFetcher(3, &queries), 9)
		pager.SetCriteria(search.Criteria{City: "Fairfield", MinPrice: search.Price(0)})

		require.NoError(t, pager.Fetch(ctx))
		require.Len(t, queries, 1)
		assert.Equal(t, "Fairfield", queries[0].Get("city"))
		assert.Equal(t, "0", queries[0].Get("minPrice"))
		assert.Equal(t, "0", queries[0].Get("page"))
		assert.Equal(t, "9", queries[0].Get("size"))
	})

	t.Run("replaces items and total pages together", func(t *testing.T) {
		pager := NewPager(pageFetcher(5, nil), 10)

		require.NoError(t, pager.Fetch(ctx))
		snap := pager.Snapshot()
		assert.Equal(t, 5, snap.TotalPages)
		assert.Equal(t, []item{{ID: 0}}, snap.Items)
	})

	t.Run("clamps cursor when total shrinks below it", func(t *testing.T) {
		pager := NewPager(pageFetcher(3, nil), 10)
		require.NoError(t, pager.Fetch(ctx))
		require.NoError(t, pager.GoTo(ctx, 2))

		// Criteria change resets to the first page even before fetching.
		pager.SetCriteria(search.Criteria{City: "Reno"})
		assert.Equal(t, 0, pager.Snapshot().Page)
	})
}

func TestPageTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("next and previous clamp at the boundaries", func(t *testing.T) {
		var queries []url.Values
		pager := NewPager(pageFetcher(2, &queries), 10)
		require.NoError(t, pager.Fetch(ctx))

		require.NoError(t, pager.Previous(ctx)) // already first page: no-op
		require.NoError(t, pager.Next(ctx))     // -> page 1
		require.NoError(t, pager.Next(ctx))     // last page: no-op
		snap := pager.Snapshot()
		assert.Equal(t, 1, snap.Page)

		// Exactly two fetches issued: initial load and the one real move.
		assert.Len(t, queries, 2)
	})

	t.Run("goTo clamps above and below", func(t *testing.T) {
		pager := NewPager(pageFetcher(4, nil), 10)
		require.NoError(t, pager.Fetch(ctx))

		require.NoError(t, pager.GoTo(ctx, 99))
		assert.Equal(t, 3, pager.Snapshot().Page)

		require.NoError(t, pager.GoTo(ctx, -7))
		assert.Equal(t, 0, pager.Snapshot().Page)
	})

	t.Run("index stays within bounds for any sequence of moves", func(t *testing.T) {
		pager := NewPager(pageFetcher(3, nil), 10)
		require.NoError(t, pager.Fetch(ctx))

		moves := []func(context.Context) error{
			pager.Next, pager.Next, pager.Next, pager.Previous,
			func(ctx context.Context) error { return pager.GoTo(ctx, 7) },
			func(ctx context.Context) error { return pager.GoTo(ctx, -1) },
			pager.Previous, pager.Previous,
		}
		for _, move := range moves {
			require.NoError(t, move(context.Background()))
			snap := pager.Snapshot()
			assert.GreaterOrEqual(t, snap.Page, 0)
			assert.LessOrEqual(t, snap.Page, snap.TotalPages-1)
		}
	})
}

func TestSupersededFetch(t *testing.T) {
	t.Run("stale response is discarded", func(t *testing.T) {
		release := make(chan struct{})
		calls := 0
		var mu sync.Mutex

		fetch := func(ctx context.Context, query url.Values) ([]item, model.PageMeta, error) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()

			if first {
				<-release
				return []item{{ID: 100}}, model.PageMeta{TotalPages: 9}, nil
			}
			return []item{{ID: 200}}, model.PageMeta{TotalPages: 2}, nil
		}

		pager := NewPager(fetch, 10)

		done := make(chan error, 1)
		go func() { done <- pager.Fetch(context.Background()) }()

		// Make sure the first fetch is in flight before issuing the second.
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return calls == 1
		}, time.Second, time.Millisecond)

		require.NoError(t, pager.Fetch(context.Background()))
		close(release)

		assert.ErrorIs(t, <-done, ErrSuperseded)

		snap := pager.Snapshot()
		assert.Equal(t, []item{{ID: 200}}, snap.Items)
		assert.Equal(t, 2, snap.TotalPages)
	})
}

func TestUpstreamFetcher(t *testing.T) {
	t.Run("fetches a page through the marketplace client", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/customers/properties", r.URL.Path)
			assert.Equal(t, "0", r.URL.Query().Get("page"))
			assert.Equal(t, "6", r.URL.Query().Get("size"))
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Write([]byte(`{"message":"success","data":[{"id":1},{"id":2}],"meta":{"totalPages":7,"currentPage":0,"totalElements":40}}`))
		}))
		defer srv.Close()

		client := upstream.NewClient(srv.URL, time.Second)
		fetch := UpstreamFetcher[item](client, "/customers/properties", "tok")

		pager := NewPager(fetch, 6)
		require.NoError(t, pager.Fetch(context.Background()))

		snap := pager.Snapshot()
		assert.Equal(t, []item{{ID: 1}, {ID: 2}}, snap.Items)
		assert.Equal(t, 7, snap.TotalPages)
		assert.Equal(t, 40, snap.TotalElements)
		assert.LessOrEqual(t, len(snap.Items), 6)
	})
}
