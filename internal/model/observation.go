package model

import "strconv"

// UnknownRoute labels requests that matched no registered route.
const UnknownRoute = "unknown"

// RequestObservation is the measurement taken once per completed HTTP request.
type RequestObservation struct {
	Method         string
	Route          string
	StatusCode     int
	DurationMillis float64

	// Log-only metadata. Never used as metric labels.
	ClientAddress string
	UserAgent     string
	RequestID     string
}

// DurationSeconds converts the measured duration to seconds.
func (o RequestObservation) DurationSeconds() float64 {
	return o.DurationMillis / 1000
}

// Labels returns the (method, route, status) label tuple.
func (o RequestObservation) Labels() []string {
	route := o.Route
	if route == "" {
		route = UnknownRoute
	}
	return []string{o.Method, route, strconv.Itoa(o.StatusCode)}
}

// IsError reports whether the response status is a client or server error.
func (o RequestObservation) IsError() bool {
	return o.StatusCode >= 400
}
