package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitKeysByUserHeader(t *testing.T) {
	handler := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID, remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/speak", nil)
		req.RemoteAddr = remoteAddr
		if userID != "" {
			req.Header.Set("X-User-ID", userID)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("u1", "198.51.100.10:1234"); code != http.StatusOK {
		t.Fatalf("first request for u1: got %d", code)
	}
	if code := send("u1", "203.0.113.9:999"); code != http.StatusTooManyRequests {
		t.Fatalf("second request for u1 from another address should be limited: got %d", code)
	}
	// A different user is an independent window.
	if code := send("u2", "198.51.100.10:1234"); code != http.StatusOK {
		t.Fatalf("first request for u2: got %d", code)
	}
	// Anonymous requests fall back to the client IP.
	if code := send("", "198.51.100.11:1234"); code != http.StatusOK {
		t.Fatalf("first anonymous request: got %d", code)
	}
	if code := send("", "198.51.100.11:5678"); code != http.StatusTooManyRequests {
		t.Fatalf("second anonymous request from same IP should be limited: got %d", code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		remoteAddr string
		want       string
	}{
		{
			name:       "single ip",
			header:     "203.0.113.1",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "multiple ips use first",
			header:     " 203.0.113.1 , 198.51.100.2 ",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "invalid forwarded falls back",
			header:     "invalid",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "ipv6 forwarded",
			header:     "2001:db8::1",
			remoteAddr: net.JoinHostPort("2001:db8::2", "443"),
			want:       "2001:db8::1",
		},
		{
			name:       "remote without port",
			header:     "invalid",
			remoteAddr: "203.0.113.1",
			want:       "203.0.113.1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.header != "" {
				req.Header.Set("X-Forwarded-For", tc.header)
			}
			if got := clientIP(req); got != tc.want {
				t.Fatalf("clientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}
