package handler

import (
	"net/http"
)

// Health returns 200 OK regardless of system state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("Health check endpoint accessed")
	writeText(w, http.StatusOK, "OK")
}
