package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/soundcheckhq/concertmatch/backend/pkg/errors"
)

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondAppError maps the error taxonomy onto HTTP status codes. Internal
// errors never leak their message to the client.
func respondAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		respondError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeValidation:
		respondError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeUnauthorized:
		respondError(w, http.StatusUnauthorized, appErr.Message)
	case apperrors.ErrorTypeExternal:
		respondError(w, http.StatusBadGateway, appErr.Message)
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
