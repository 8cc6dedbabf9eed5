package handler

import (
	"net/http"

	"github.com/estately/portal-server-go/internal/httputil"
	"github.com/estately/portal-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func formatIdentity(identity *model.Identity) map[string]any {
	return map[string]any{
		"id":       identity.ID,
		"email":    identity.Email,
		"name":     identity.Name,
		"role":     string(identity.Role),
		"imageUrl": identity.ImageURL,
		"active":   identity.Active,
		"approved": identity.Approved,
	}
}
