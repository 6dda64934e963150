package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dockerlab/demoapp/internal/middleware"
	"github.com/dockerlab/demoapp/internal/model"
)

const greeting = "Hello from Dockerized Go app!"

var testLogLevels = []string{"debug", "info", "warn", "error"}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.Log.Info("Root endpoint accessed")
	writeText(w, http.StatusOK, greeting)
}

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := model.StatusResponse{Status: "running", Timestamp: h.Now()}
	h.Log.Info("Status endpoint accessed",
		zap.String("status", resp.Status),
		zap.Time("timestamp", resp.Timestamp),
	)
	middleware.RespondJSON(w, http.StatusOK, resp)
}

// TestLogs emits one log line per level so sinks can be checked end to end.
func (h *Handler) TestLogs(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("Debug log test")
	h.Log.Info("Info log test", zap.String("requestId", uuid.NewString()))
	h.Log.Warn("Warning log test", zap.String("warning", "This is a test warning"))
	h.Log.Error("Error log test",
		zap.String("error", "This is a test error"),
		zap.String("code", "TEST_ERROR"),
	)

	middleware.RespondJSON(w, http.StatusOK, model.TestLogsResponse{
		Message:   "Logs generated successfully",
		Logs:      testLogLevels,
		Timestamp: h.Now(),
	})
}

// NotFound handles every unmatched method and path.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	url := r.URL.RequestURI()
	h.Log.Warn("404 Not Found",
		zap.String("method", r.Method),
		zap.String("url", url),
		zap.String("ip", middleware.ClientIP(r)),
	)
	middleware.RespondError(w, http.StatusNotFound, "Not Found",
		fmt.Sprintf("Route %s %s not found", r.Method, url))
}
