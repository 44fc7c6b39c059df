package fetch

import (
	"errors"
	"strings"
	"testing"
)

func TestStatusError_Classification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		contains string
		sentinel error
	}{
		{"not found", 404, "not found", ErrNotFound},
		{"unauthorized", 401, "Authentication/Authorization", ErrUnauthorized},
		{"forbidden", 403, "Authentication/Authorization", ErrUnauthorized},
		{"generic server error", 500, "HTTP 500", nil},
		{"generic client error", 422, "HTTP 422", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStatusError(tt.status, "https://x/y")

			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Error() = %q, want substring %q", err.Error(), tt.contains)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
		})
	}
}

func TestStatusError_SentinelsAreDistinct(t *testing.T) {
	if errors.Is(NewStatusError(404, "u"), ErrUnauthorized) {
		t.Error("404 must not match ErrUnauthorized")
	}
	if errors.Is(NewStatusError(500, "u"), ErrNotFound) {
		t.Error("500 must not match ErrNotFound")
	}
}
