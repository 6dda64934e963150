package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dockerlab/demoapp/internal/model"
)

// Observer consumes request observations.
type Observer interface {
	Observe(obs model.RequestObservation)
}

// Record times every request and, once the handler has finished, logs it and
// hands the observation to obs. Failures while recording are reported on
// local and never reach the client.
func Record(log, local *zap.Logger, obs Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			reqID := GetRequestID(r.Context())
			if reqID == "" {
				reqID = ww.Header().Get(RequestIDHeader)
			}

			dispatch(log, local, obs, model.RequestObservation{
				Method:         r.Method,
				Route:          routePattern(r),
				StatusCode:     status,
				DurationMillis: float64(time.Since(start)) / float64(time.Millisecond),
				ClientAddress:  ClientIP(r),
				UserAgent:      r.UserAgent(),
				RequestID:      reqID,
			})
		})
	}
}

// routePattern returns the matched route pattern, never the raw URL.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return model.UnknownRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return model.UnknownRoute
}

func dispatch(log, local *zap.Logger, obs Observer, o model.RequestObservation) {
	defer func() {
		if v := recover(); v != nil {
			local.Warn("request observation dropped",
				zap.Any("error", v),
				zap.String("method", o.Method),
				zap.String("route", o.Route),
			)
		}
	}()

	fields := []zap.Field{
		zap.String("method", o.Method),
		zap.String("route", o.Route),
		zap.Int("status", o.StatusCode),
		zap.Float64("responseTime", o.DurationMillis),
		zap.String("ip", o.ClientAddress),
		zap.String("userAgent", o.UserAgent),
		zap.String("request_id", o.RequestID),
	}
	if o.IsError() {
		log.Error("HTTP Request Error", fields...)
	} else {
		log.Info("HTTP Request", fields...)
	}

	obs.Observe(o)
}
