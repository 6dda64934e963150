package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Handler serves the application routes.
type Handler struct {
	Log *zap.Logger
	Now func() time.Time
}

// New creates a Handler logging to log.
func New(log *zap.Logger) *Handler {
	return &Handler{Log: log, Now: time.Now}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
