package utils

import "testing"

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{
		"http://localhost:3000",
		"http://media-server.local",
		"http://nas",
		"http://127.0.0.1:8080",
		"http://192.168.1.50:3000",
		"http://10.0.0.2",
	}
	for _, origin := range allowed {
		if !IsAllowedOrigin(origin) {
			t.Errorf("expected %q to be allowed", origin)
		}
	}

	blocked := []string{
		"https://example.com",
		"http://8.8.8.8",
		"not a url",
		"",
	}
	for _, origin := range blocked {
		if IsAllowedOrigin(origin) {
			t.Errorf("expected %q to be blocked", origin)
		}
	}
}
