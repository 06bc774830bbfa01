package http

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP is the sentinel identifier used when no client address can be
// determined. Requests without an address still share one rate-limit bucket.
const UnknownIP = "unknown"

// ClientIP extracts a best-effort client address for rate limiting:
// first valid entry of X-Forwarded-For, then X-Real-IP, then the socket
// address, then the "unknown" sentinel. The value is an identifier, not an
// authenticated fact — a spoofed header only moves the sender into a
// different bucket.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			ip := strings.TrimSpace(part)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		if net.ParseIP(r.RemoteAddr) != nil {
			return r.RemoteAddr
		}
	}

	return UnknownIP
}
