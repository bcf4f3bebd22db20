package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clipper/internal/middleware"
	"clipper/internal/service"
)

// writeServiceError maps service errors to a status and a client-safe
// message. Anything unrecognized becomes a 500 with fallback.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, service.ErrSignatureInvalid):
		http.Error(w, "invalid signature", http.StatusBadRequest)
	case errors.Is(err, service.ErrMalformedPayload):
		http.Error(w, "invalid payload", http.StatusBadRequest)
	case errors.Is(err, service.ErrUnknownSku):
		http.Error(w, "unknown price", http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidPack):
		http.Error(w, "invalid credit pack", http.StatusBadRequest)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func callerID(r *http.Request) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	return userID, userID != ""
}
