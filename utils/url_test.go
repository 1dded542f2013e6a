package utils

import "testing"

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		base    string
		path    string
		want    string
		wantErr bool
	}{
		{"http://localhost:8000", "/check", "http://localhost:8000/check", false},
		{"http://localhost:8000/", "followers", "http://localhost:8000/followers", false},
		{"https://host/api/", "/settings", "https://host/api/settings", false},
		{"http://localhost:8000?x=1", "/check", "http://localhost:8000/check", false},

		{"ftp://localhost", "/check", "", true},
		{"localhost:8000", "/check", "", true},
		{"http://", "/check", "", true},
	}

	for _, tt := range tests {
		got, err := EndpointURL(tt.base, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("EndpointURL(%q, %q) error = %v, wantErr %v", tt.base, tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("EndpointURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
