package handler

import (
	"net/http"
	"strconv"

	"github.com/estately/portal-server-go/internal/config"
)

const (
	DefaultLimit = 10
	MaxLimit     = config.MaxPageSize
)

// PaginationParams is the limit/page pair used by the admin account
// screens. Pages are zero-based.
type PaginationParams struct {
	Limit int
	Page  int
}

func ParsePagination(r *http.Request) PaginationParams {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	if page < 0 {
		page = 0
	}

	return PaginationParams{
		Limit: limit,
		Page:  page,
	}
}
