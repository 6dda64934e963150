package server

import (
	"github.com/dockerlab/demoapp/internal/handler"
	"github.com/dockerlab/demoapp/internal/logging"
	"github.com/dockerlab/demoapp/internal/metrics"
)

// Deps holds the process-scoped logger and metrics shared by every request.
type Deps struct {
	Log     *logging.Logger
	Metrics *metrics.Registry
	Routes  *handler.Handler
	Scrape  *handler.MetricsHandler
}

// NewDeps wires handlers to the logger and metrics registry.
func NewDeps(log *logging.Logger, reg *metrics.Registry) *Deps {
	return &Deps{
		Log:     log,
		Metrics: reg,
		Routes:  handler.New(log.Logger),
		Scrape:  &handler.MetricsHandler{Gatherer: reg.Gatherer(), Log: log.Logger},
	}
}
