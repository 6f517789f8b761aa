package config

import "time"

// Endpoint names a group of service endpoints that share overrides
type Endpoint string

const (
	EndpointEnhance     Endpoint = "enhance"
	EndpointManualEntry Endpoint = "manualEntry"
	EndpointExport      Endpoint = "export"
	EndpointChat        Endpoint = "chat"
)

// applyEndpointDefaults applies global service defaults to an endpoint override
func (c *Config) applyEndpointDefaults(epCfg *EndpointConfig) {
	if epCfg.Timeout == nil || *epCfg.Timeout <= 0 {
		timeout := c.Service.Timeout
		epCfg.Timeout = &timeout
	}
}

// GetEndpointConfig returns the configuration for one endpoint group with fallback to the service config
func (c *Config) GetEndpointConfig(ep Endpoint) EndpointConfig {
	var config EndpointConfig
	switch ep {
	case EndpointEnhance:
		config = c.Service.Enhance
	case EndpointManualEntry:
		config = c.Service.ManualEntry
	case EndpointExport:
		config = c.Service.Export
	case EndpointChat:
		config = c.Service.Chat
	}

	c.applyEndpointDefaults(&config)
	return config
}

// GetEndpointTimeout is a shorthand for the resolved timeout of one endpoint group
func (c *Config) GetEndpointTimeout(ep Endpoint) time.Duration {
	return *c.GetEndpointConfig(ep).Timeout
}
