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
		want       string
	}{
		{name: "remote addr", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "xff ignored without trust", remote: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, want: "10.0.0.1"},
		{name: "xff first entry", remote: "10.0.0.1:5555", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, trustProxy: true, want: "1.2.3.4"},
		{name: "cloudflare wins", remote: "10.0.0.1:5555", headers: map[string]string{"CF-Connecting-IP": "9.9.9.9", "X-Forwarded-For": "1.2.3.4"}, trustProxy: true, want: "9.9.9.9"},
		{name: "real ip", remote: "10.0.0.1:5555", headers: map[string]string{"X-Real-IP": "8.8.8.8"}, trustProxy: true, want: "8.8.8.8"},
		{name: "invalid header skipped", remote: "10.0.0.1:5555", headers: map[string]string{"CF-Connecting-IP": "nope", "X-Real-IP": "8.8.4.4"}, trustProxy: true, want: "8.8.4.4"},
		{name: "mapped v4 remote", remote: "[::ffff:10.0.0.9]:80", want: "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"192.168.1.0/24", " 10.0.0.7 ", "", "garbage"})

	tests := []struct {
		ip   string
		want bool
	}{
		{ip: "192.168.1.42", want: true},
		{ip: "10.0.0.7", want: true},
		{ip: "10.0.0.8", want: false},
		{ip: "not-an-ip", want: false},
		{ip: "::ffff:192.168.1.5", want: true},
		{ip: "10.0.0.7:443", want: true},
	}

	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if NewIPMatcher(nil).IsEmpty() != true {
		t.Error("IsEmpty() = false for empty list")
	}
}
