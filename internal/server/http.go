package server

import (
	"time"

	"resumebuilder/internal/config"
	resumeErrors "resumebuilder/internal/errors"
	"resumebuilder/internal/export"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/session"
)

// ModeRequest represents the request body for the mode endpoint
// ComparisonRequest represents the request body for the comparison endpoint; a missing
// enabled field toggles
// TemplateRequest represents the request body for the template endpoint
// SkillRequest represents the request body for editing one skill
// ErrorResponse represents an error response
type ModeRequest struct {
	Mode string `json:"mode"`
}

type ComparisonRequest struct {
	Enabled *bool `json:"enabled"`
}

type TemplateRequest struct {
	ID int `json:"id"`
}

type SkillRequest struct {
	Value string `json:"value"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Backend reports on the remote service the session talks to
type Backend interface {
	BaseURL() string
	Healthy() bool
	Stats() map[string]any
}

// Server holds configuration for the preview server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// The one session every request drives
	Session *session.Session
	Exports *export.Controller
	Backend Backend

	Observability *observability.ObservabilityManager

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *resumeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies are the collaborators the server exposes over HTTP
type Dependencies struct {
	Session       *session.Session
	Exports       *export.Controller
	Backend       Backend
	Observability *observability.ObservabilityManager
}

// ServerConfigFrom builds a ServerConfig from the application configuration.
// Uploads may be as large as app.maxFileSize plus room for the multipart framing.
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	maxRequest := int64(0)
	if cfg.App.MaxFileSize > 0 {
		maxRequest = cfg.App.MaxFileSize + 1<<20
	}
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: maxRequest,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *resumeErrors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	om := deps.Observability
	if om == nil {
		// A disabled manager never fails to build
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{})
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Session:        deps.Session,
		Exports:        deps.Exports,
		Backend:        deps.Backend,
		Observability:  om,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
