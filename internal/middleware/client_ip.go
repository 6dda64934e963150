package middleware

import (
	"net"
	"net/http"
)

// ClientIP returns the client address without its port. RealIP must run
// first for proxy headers to be honoured.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
