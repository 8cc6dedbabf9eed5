package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/estately/portal-server-go/internal/apperr"
	"github.com/estately/portal-server-go/internal/upstream"
)

const maxUploadMemory = 8 << 20

// MediaHandler forwards photo uploads to the marketplace media
// service and returns the hosted URLs.
type MediaHandler struct {
	client *upstream.Client
}

func NewMediaHandler(client *upstream.Client) *MediaHandler {
	return &MediaHandler{client: client}
}

func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/upload", h.Upload)

	return r
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperr.ValidationError("invalid multipart form"))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, apperr.MissingRequired("files"))
		return
	}

	files := make([]upstream.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeError(w, apperr.ValidationError("unreadable upload"))
			return
		}
		defer file.Close()
		files = append(files, upstream.UploadFile{Name: header.Filename, Content: file})
	}

	urls, err := h.client.Upload(r.Context(), bearerToken(r), files)
	if err != nil {
		writeError(w, upstreamError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"url": urls},
	})
}
