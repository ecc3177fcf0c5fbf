package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/api/v1/accounts/01ABC123", "/api/v1/accounts/:id"},
		{"/api/v1/accounts/01ABC123/transactions", "/api/v1/accounts/:id/transactions"},
		{"/api/v1/tables/01XYZ/join", "/api/v1/tables/:id/join"},
		{"/api/v1/sessions/01DEF/heartbeat", "/api/v1/sessions/:id/heartbeat"},
		{"/api/v1/transactions/01GHI", "/api/v1/transactions/:id"},
		{"/api/v1/tables/", "/api/v1/tables/"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.expected {
			t.Fatalf("normalizePath(%q) = %q, expected %q", tt.path, got, tt.expected)
		}
	}
}
