package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"ipv4 remote addr", "203.0.113.7:51234", "", "", "203.0.113.7"},
		{"ipv6 remote addr", "[2001:db8::1]:51234", "", "", "2001:db8::1"},
		{"forwarded-for wins", "203.0.113.7:51234", "198.51.100.2", "", "198.51.100.2"},
		{"first forwarded hop", "203.0.113.7:51234", "198.51.100.2, 10.0.0.1", "", "198.51.100.2"},
		{"real-ip fallback", "203.0.113.7:51234", "", "198.51.100.9", "198.51.100.9"},
		{"unparseable remote addr", "203.0.113.7", "", "", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}

			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
