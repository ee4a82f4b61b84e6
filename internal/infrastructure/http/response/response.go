package response

import (
	"encoding/json"
	"net/http"
)

type ErrorBody struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func Error(kind, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorBody{
			Kind:    kind,
			Message: message,
			Details: details,
		},
	}
}

func WriteJSON(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func WriteSuccess[T any](w http.ResponseWriter, data T) {
	WriteJSON(w, http.StatusOK, data)
}

func WriteCreated[T any](w http.ResponseWriter, location string, data T) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	WriteJSON(w, http.StatusCreated, data)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WriteError(w http.ResponseWriter, statusCode int, kind, message string, details map[string]string) {
	WriteJSON(w, statusCode, Error(kind, message, details))
}

// WriteBadRequest is for payloads that never reach the domain (malformed JSON, oversized bodies).
func WriteBadRequest(w http.ResponseWriter, message string, err error) {
	var details map[string]string
	if err != nil {
		details = map[string]string{"cause": err.Error()}
	}
	WriteError(w, http.StatusBadRequest, "ValidationError", message, details)
}
