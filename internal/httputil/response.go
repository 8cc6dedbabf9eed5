package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/estately/portal-server-go/internal/apperr"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string           `json:"error"`
	Code    apperr.ErrorCode `json:"code"`
	Details any              `json:"details,omitempty"`
}

// WriteError writes an AppError as an HTTP response with appropriate status code
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperr.AsAppError(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = apperr.Internal("An unexpected error occurred")
	}

	status := statusFromCode(appErr.Code)
	response := ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}

	WriteJSON(w, status, response)
}

// WriteErrorWithStatus writes an error with a specific HTTP status code
func WriteErrorWithStatus(w http.ResponseWriter, status int, err *apperr.AppError) {
	response := ErrorResponse{
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	}
	WriteJSON(w, status, response)
}

// statusFromCode maps ErrorCode to HTTP status code
func statusFromCode(code apperr.ErrorCode) int {
	switch code {
	// 400 Bad Request
	case apperr.ErrCodeValidation,
		apperr.ErrCodeInvalidInput,
		apperr.ErrCodeMissingRequired:
		return http.StatusBadRequest

	// 401 Unauthorized
	case apperr.ErrCodeUnauthorized,
		apperr.ErrCodeBadCredentials,
		apperr.ErrCodeInvalidToken,
		apperr.ErrCodeTokenExpired:
		return http.StatusUnauthorized

	// 403 Forbidden
	case apperr.ErrCodeForbidden:
		return http.StatusForbidden

	// 404 Not Found
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case apperr.ErrCodeConflict:
		return http.StatusConflict

	// 429 Too Many Requests
	case apperr.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests

	// 502 Bad Gateway
	case apperr.ErrCodeUpstream:
		return http.StatusBadGateway

	// 500 Internal Server Error
	case apperr.ErrCodeInternal,
		apperr.ErrCodeDatabase:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
