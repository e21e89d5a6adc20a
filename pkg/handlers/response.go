package handlers

import (
	"encoding/json"
	"net/http"
)

// ApiResponse is the envelope for all API responses.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes data as a JSON response with the given status code and
// returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a flat {error, message} JSON body. Handlers use it for
// request-shape problems; service errors go through writeServiceError.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	body := map[string]string{
		"error":   errorCode,
		"message": message,
	}
	return WriteJSON(w, statusCode, body)
}
