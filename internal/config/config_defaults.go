package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Service Configuration - Global defaults
	v.SetDefault("service.baseURL", "http://localhost:5000")
	v.SetDefault("service.timeout", 60*time.Second)
	v.SetDefault("service.userAgent", "resumebuilder")

	// Service Configuration - Endpoint overrides are unset so they fall back to service.timeout
	v.SetDefault("service.export.timeout", 90*time.Second) // Document generation is slower

	// Circuit Breaker Configuration
	v.SetDefault("service.circuitBreaker.enabled", true)
	v.SetDefault("service.circuitBreaker.maxRequests", 3)
	v.SetDefault("service.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("service.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("service.circuitBreaker.minRequests", 3)
	v.SetDefault("service.circuitBreaker.failureThreshold", 0.6)

	// Outbound rate limiting
	v.SetDefault("service.rateLimit.enabled", false)
	v.SetDefault("service.rateLimit.requestsPerMin", 30)
	v.SetDefault("service.rateLimit.burstCapacity", 5)

	// Export Configuration
	v.SetDefault("export.outputDir", ".")
	v.SetDefault("export.docxFilename", "resume.docx")
	v.SetDefault("export.maxArtifactSize", 20*1024*1024) // 20MB

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // Covers a full enhancement round trip
	v.SetDefault("server.idleTimeout", 120*time.Second)
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown", "html"})
	v.SetDefault("app.maxFileSize", 10*1024*1024) // 10MB
	v.SetDefault("app.defaultTemplate", 1)

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "resumebuilder")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Console Configuration
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
