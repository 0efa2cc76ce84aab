package handler

import (
	"encoding/json"
	"net/http"

	"pdf-to-qr-products/internal/domain"
	apperrors "pdf-to-qr-products/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok && user != nil
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// envelope is the body shape of dispatcher actions.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type messageData struct {
	Message string `json:"message"`
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// writeFailure maps err to its AppError and writes it inside a failure envelope.
func writeFailure(w http.ResponseWriter, err error) *apperrors.AppError {
	appErr := apperrors.FromDomain(err)
	writeJSON(w, appErr.StatusCode, envelope{Success: false, Data: messageData{Message: appErr.Message}})
	return appErr
}
