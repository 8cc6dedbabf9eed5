package model

import "encoding/json"

// Envelope is the upstream response wrapper: {"message": ..., "data": ..., "meta": ...}.
// Data stays raw so list and single-record endpoints share one decode path.
type Envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *PageMeta       `json:"meta,omitempty"`
}

// PageMeta is the pagination block of a list response. Total page count
// always comes from here, never from a locally held item count.
type PageMeta struct {
	TotalPages    int `json:"totalPages"`
	CurrentPage   int `json:"currentPage"`
	TotalElements int `json:"totalElements"`
}
