package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	g, err := NewGuard("203.0.113.0/24")
	require.NoError(t, err)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"direct peer", "198.51.100.7:5000", nil, "198.51.100.7"},
		{"untrusted peer ignores forwarded", "198.51.100.7:5000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "198.51.100.7"},
		{"trusted proxy forwards first hop", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.9"}, "1.2.3.4"},
		{"extra proxy range", "203.0.113.5:80", map[string]string{"X-Real-IP": "5.6.7.8"}, "5.6.7.8"},
		{"garbage forwarded falls back", "127.0.0.1:80", map[string]string{"X-Forwarded-For": "nope"}, "127.0.0.1"},
		{"no port", "192.168.1.1", nil, "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/statements", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, g.ClientIP(r))
		})
	}
	assert.Equal(t, int64(1), g.GetMetrics().InvalidForwarded)

	_, err = NewGuard("not-a-cidr")
	assert.Error(t, err)

	single, err := NewGuard("198.51.100.7")
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/statements", nil)
	r.RemoteAddr = "198.51.100.7:5000"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	assert.Equal(t, "1.2.3.4", single.ClientIP(r))
}

func TestGuardMiddleware(t *testing.T) {
	g, err := NewGuard()
	require.NoError(t, err)
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		method, target string
		want           int
	}{
		{http.MethodGet, "/statements?start=2024-01-01&end=2024-01-31", http.StatusNoContent},
		{http.MethodGet, "/statements/../.env", http.StatusBadRequest},
		{http.MethodGet, "/statements?layout=%3Cscript%3E", http.StatusBadRequest},
		{"TRACE", "/statements", http.StatusBadRequest},
		{http.MethodGet, "/statements?q=" + strings.Repeat("a", maxURLLength), http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))
		assert.Equal(t, tt.want, rr.Code, "%s %s", tt.method, tt.target)
	}
	assert.Equal(t, int64(4), g.GetMetrics().SuspiciousRequests)
}

func TestHeaders(t *testing.T) {
	h := Headers(DefaultHeadersConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rr, req)
	assert.Contains(t, rr.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}
