package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dockerlab/demoapp/internal/model"
)

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes a JSON error response.
func RespondError(w http.ResponseWriter, status int, errText, message string) {
	RespondJSON(w, status, model.ErrorResponse{Error: errText, Message: message})
}
