package utils

import "testing"

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		allowed bool
	}{
		// localhost
		{"http://localhost", true},
		{"http://localhost:8000", true},
		{"http://overlay.localhost:3000", true},

		// private IPs
		{"http://192.168.1.1", true},
		{"http://10.0.0.1:8080", true},
		{"http://172.31.255.255:443", true},
		{"http://127.0.0.1:3000", true},
		{"http://[::1]:8000", true},

		// link-local
		{"http://169.254.1.1", true},

		// .local and single-label hostnames
		{"http://streampc.local:8000", true},
		{"http://obs:8000", true},

		// public domains and IPs
		{"http://example.com", false},
		{"https://evil.com", false},
		{"http://8.8.8.8", false},
		{"http://172.32.0.1", false},

		// empty/invalid
		{"", false},
		{"not-a-url", false},
		{"null", false},
	}

	for _, tt := range tests {
		got := IsAllowedOrigin(tt.origin)
		if got != tt.allowed {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}
}

func TestOriginPolicy_Allowed(t *testing.T) {
	p := OriginPolicy{Extra: []string{"https://overlay.example.com/"}, AllowNull: true}

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://overlay.example.com", true},
		{"https://OVERLAY.example.com", true},
		{"https://other.example.com", false},
		{"null", true},
		{"http://localhost:8000", true},
	}
	for _, tt := range tests {
		if got := p.Allowed(tt.origin); got != tt.allowed {
			t.Errorf("Allowed(%q) = %v, want %v", tt.origin, got, tt.allowed)
		}
	}

	if (OriginPolicy{}).Allowed("null") {
		t.Error("null origin allowed without AllowNull")
	}
}
