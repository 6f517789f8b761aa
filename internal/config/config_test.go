package config

import (
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	if cfg.Service.BaseURL != "http://localhost:5000" {
		t.Errorf("Expected default base URL http://localhost:5000, got %s", cfg.Service.BaseURL)
	}
	if cfg.Export.DocxFilename != "resume.docx" {
		t.Errorf("Expected default docx filename resume.docx, got %s", cfg.Export.DocxFilename)
	}
	if cfg.App.DefaultTemplate != 1 {
		t.Errorf("Expected default template 1, got %d", cfg.App.DefaultTemplate)
	}
	if cfg.Observability.ServiceInstance == "" {
		t.Error("Expected service instance to be generated")
	}
}

func TestGetEndpointTimeout(t *testing.T) {
	cfg := Defaults()

	if got := cfg.GetEndpointTimeout(EndpointEnhance); got != 60*time.Second {
		t.Errorf("Expected enhance to fall back to 60s, got %s", got)
	}
	if got := cfg.GetEndpointTimeout(EndpointExport); got != 90*time.Second {
		t.Errorf("Expected export override 90s, got %s", got)
	}

	chat := 5 * time.Second
	cfg.Service.Chat.Timeout = &chat
	if got := cfg.GetEndpointTimeout(EndpointChat); got != chat {
		t.Errorf("Expected chat override %s, got %s", chat, got)
	}

	// Resolving must not write the fallback back into the config
	if cfg.Service.Enhance.Timeout != nil {
		t.Error("Expected enhance override to stay unset")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.App.LogLevel = "verbose" }, true},
		{"unsupported default format", func(c *Config) { c.App.DefaultFormat = "pdf" }, true},
		{"empty base url", func(c *Config) { c.Service.BaseURL = "" }, true},
		{"relative base url", func(c *Config) { c.Service.BaseURL = "localhost" }, true},
		{"zero timeout", func(c *Config) { c.Service.Timeout = 0 }, true},
		{"zero template", func(c *Config) { c.App.DefaultTemplate = 0 }, true},
		{"empty docx filename", func(c *Config) { c.Export.DocxFilename = "" }, true},
		{"threshold above one", func(c *Config) { c.Service.CircuitBreaker.FailureThreshold = 1.5 }, true},
		{"rate limit without budget", func(c *Config) {
			c.Service.RateLimit.Enabled = true
			c.Service.RateLimit.RequestsPerMin = 0
		}, true},
		{"prometheus without port", func(c *Config) {
			c.Observability.Prometheus.Enabled = true
			c.Observability.Prometheus.Port = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("RESUMEBUILDER_SERVICE_BASEURL", "http://svc.internal:9000/")
	t.Setenv("RESUMEBUILDER_APP_LOGLEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if cfg.Service.BaseURL != "http://svc.internal:9000" {
		t.Errorf("Expected trimmed env base URL, got %s", cfg.Service.BaseURL)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.App.LogLevel)
	}
}
