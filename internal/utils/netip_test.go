package utils

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		expected   string
	}{
		{name: "remote addr", remote: "192.0.2.10:5555", expected: "192.0.2.10"},
		{name: "ipv6 remote addr", remote: "[2001:db8::1]:443", expected: "2001:db8::1"},
		{name: "untrusted proxy header ignored", remote: "192.0.2.10:5555", headers: map[string]string{"X-Forwarded-For": "203.0.113.5"}, expected: "192.0.2.10"},
		{name: "forwarded for first entry", remote: "127.0.0.1:80", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, trustProxy: true, expected: "203.0.113.5"},
		{name: "cloudflare wins", remote: "127.0.0.1:80", headers: map[string]string{"CF-Connecting-IP": "198.51.100.7", "X-Forwarded-For": "203.0.113.5"}, trustProxy: true, expected: "198.51.100.7"},
		{name: "real ip fallback", remote: "127.0.0.1:80", headers: map[string]string{"X-Real-IP": "198.51.100.8"}, trustProxy: true, expected: "198.51.100.8"},
		{name: "trusted without headers", remote: "127.0.0.1:80", trustProxy: true, expected: "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.expected {
				t.Errorf("ClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.0.2.1 ", "2001:db8::/32", "not-an-ip", ""})

	tests := []struct {
		ip       string
		expected bool
	}{
		{ip: "10.1.2.3", expected: true},
		{ip: "192.0.2.1", expected: true},
		{ip: "192.0.2.2", expected: false},
		{ip: "::ffff:10.0.0.1", expected: true},
		{ip: "2001:db8::42", expected: true},
		{ip: "2001:db9::1", expected: false},
		{ip: "garbage", expected: false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.expected {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.expected)
		}
	}

	if m.IsEmpty() {
		t.Error("IsEmpty() = true for a populated matcher")
	}
	if !NewIPMatcher([]string{"nope"}).IsEmpty() {
		t.Error("IsEmpty() = false when every entry is invalid")
	}
}
