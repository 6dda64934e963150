package model

import "time"

// StatusResponse is the response for GET /status.
type StatusResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// TestLogsResponse is the response for GET /test-logs.
type TestLogsResponse struct {
	Message   string    `json:"message"`
	Logs      []string  `json:"logs"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the JSON body for 404 and 500 responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
