package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestHasCode(t *testing.T) {
	inner := NewServiceError(ErrCodeServiceError, "Enhancement failed", nil)
	outer := NewValidationError(ErrCodeInvalidRequest, "bad request", inner)

	tests := []struct {
		name     string
		err      error
		code     string
		expected bool
	}{
		{name: "direct code", err: inner, code: ErrCodeServiceError, expected: true},
		{name: "code in cause chain", err: outer, code: ErrCodeServiceError, expected: true},
		{name: "wrapped by fmt", err: fmt.Errorf("submit: %w", inner), code: ErrCodeServiceError, expected: true},
		{name: "different code", err: inner, code: ErrCodeNothingToExport, expected: false},
		{name: "plain error", err: fmt.Errorf("boom"), code: ErrCodeServiceError, expected: false},
		{name: "nil error", err: nil, code: ErrCodeServiceError, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("Expected HasCode=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsUserError(t *testing.T) {
	if !IsUserError(NewValidationError(ErrCodeNoFileSelected, "Please upload a resume first!", nil)) {
		t.Error("Expected validation error to be a user error")
	}
	if IsUserError(NewNetworkError(ErrCodeServiceUnavailable, "Failed to contact backend", nil)) {
		t.Error("Expected network error not to be a user error")
	}
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError(ErrCodeNothingToExport, "No structured data to export", nil))
	if got := UserMessage(err); got != "No structured data to export" {
		t.Errorf("Expected user message 'No structured data to export', got '%s'", got)
	}
	if got := UserMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("Expected 'plain', got '%s'", got)
	}
}

func TestLogErrorIncludesAppErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	err := NewServiceError(ErrCodeServiceError, "Export failed", nil).WithContext("status", 500)
	logger.LogError(err, "export request failed", "endpoint", "/export/docx")

	var entry map[string]any
	if decodeErr := json.Unmarshal(buf.Bytes(), &entry); decodeErr != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), decodeErr)
	}
	if entry["error_code"] != ErrCodeServiceError {
		t.Errorf("Expected error_code %s, got %v", ErrCodeServiceError, entry["error_code"])
	}
	if entry["status"] != float64(500) {
		t.Errorf("Expected status 500, got %v", entry["status"])
	}
	if entry["endpoint"] != "/export/docx" {
		t.Errorf("Expected endpoint attribute, got %v", entry["endpoint"])
	}
}

func TestNewLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("Expected level %s to be valid, got %v", level, err)
		}
	}
	_, err := New("verbose")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("Expected invalid log level error, got %v", err)
	}
}
