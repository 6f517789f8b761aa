package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// applyFallbacks fills values that depend on other values or on the environment
func (c *Config) applyFallbacks() {
	c.applyServiceDefaults()
	c.applyExportDefaults()
	c.applyObservabilityDefaults()
}

// applyServiceDefaults normalizes the service base URL
func (c *Config) applyServiceDefaults() {
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
}

// applyExportDefaults expands the output directory
func (c *Config) applyExportDefaults() {
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "."
	}
	if strings.HasPrefix(c.Export.OutputDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.Export.OutputDir = filepath.Join(home, c.Export.OutputDir[2:])
		}
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"RESUMEBUILDER_SERVICE_BASEURL",
		"RESUMEBUILDER_SERVICE_TIMEOUT",
		"RESUMEBUILDER_EXPORT_OUTPUTDIR",
		"RESUMEBUILDER_SERVER_PORT",
		"RESUMEBUILDER_SERVER_HOST",
		"RESUMEBUILDER_APP_LOGLEVEL",
		"RESUMEBUILDER_OBSERVABILITY_ENABLED",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			log.Printf("[CONFIG]   %s=%s", envVar, value)
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Service Base URL: %s", c.Service.BaseURL)
	log.Printf("[CONFIG] Service Timeout: %s", c.Service.Timeout)
	log.Printf("[CONFIG] Circuit Breaker Enabled: %t", c.Service.CircuitBreaker.Enabled)
	log.Printf("[CONFIG] Export Directory: %s", c.Export.OutputDir)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Default Template: %d", c.App.DefaultTemplate)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] === Endpoint Timeouts ===")
	for _, ep := range []Endpoint{EndpointEnhance, EndpointManualEntry, EndpointExport, EndpointChat} {
		log.Printf("[CONFIG] %s: %s", ep, c.GetEndpointTimeout(ep))
	}

	log.Println("[CONFIG] =====================================")
}
