// Package security resolves client addresses behind proxies, turns away
// obvious probes and sets response hardening headers.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

const maxURLLength = 2048

// Metrics counts what the guard rejected.
type Metrics struct {
	SuspiciousRequests int64
	InvalidForwarded   int64
}

// Guard resolves client IPs and flags suspicious requests.
type Guard struct {
	trustedProxies []*net.IPNet
	suspicious     int64
	invalidFwd     int64
}

// NewGuard trusts loopback and private networks plus any extra CIDRs or
// single addresses.
func NewGuard(extraProxies ...string) (*Guard, error) {
	g := &Guard{}
	for _, cidr := range append([]string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"}, extraProxies...) {
		cidr = strings.TrimSpace(cidr)
		if ip := net.ParseIP(cidr); ip != nil {
			if ip.To4() != nil {
				cidr += "/32"
			} else {
				cidr += "/128"
			}
		}
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy CIDR %s: %w", cidr, err)
		}
		g.trustedProxies = append(g.trustedProxies, network)
	}
	return g, nil
}

// ClientIP returns the direct peer address, or the first forwarded address
// when the peer is a trusted proxy.
func (g *Guard) ClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	parsed := net.ParseIP(directIP)
	if parsed == nil || !g.trusted(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
		atomic.AddInt64(&g.invalidFwd, 1)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
		atomic.AddInt64(&g.invalidFwd, 1)
	}
	return directIP
}

func (g *Guard) trusted(ip net.IP) bool {
	for _, network := range g.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

var probePatterns = []string{
	"../", "..\\", "%2e%2e", ".env", ".git", "wp-admin", "phpmyadmin",
	"etc/passwd", "<script", "union select",
}

// Suspicious reports traversal attempts, well-known probe paths, odd
// methods and oversized URLs.
func (g *Guard) Suspicious(r *http.Request) bool {
	if len(r.URL.String()) > maxURLLength {
		return g.flag()
	}
	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", "CONNECT":
		return g.flag()
	}
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	target := strings.ToLower(r.URL.Path + "?" + query)
	for _, p := range probePatterns {
		if strings.Contains(target, p) {
			return g.flag()
		}
	}
	return false
}

func (g *Guard) flag() bool {
	atomic.AddInt64(&g.suspicious, 1)
	return true
}

// Middleware answers suspicious requests with 400 before they reach a handler.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Suspicious(r) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetMetrics returns current counters
func (g *Guard) GetMetrics() Metrics {
	return Metrics{
		SuspiciousRequests: atomic.LoadInt64(&g.suspicious),
		InvalidForwarded:   atomic.LoadInt64(&g.invalidFwd),
	}
}
