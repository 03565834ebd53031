// Package config holds process-wide configuration for the Arcanna MCP
// server, read once from the environment at startup.
package config

import (
	"fmt"
	"os"
)

// Transport modes supported by the MCP server.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config carries credentials and endpoints for the Arcanna platform.
// Two distinct API keys exist: the management key drives resource,
// metrics and agentic administration; the input key is restricted to
// event ingestion, feedback and job control.
type Config struct {
	Host             string
	ManagementAPIKey string
	InputAPIKey      string
	User             string
	TransportMode    string
	SSEPort          string
	LogLevel         string
}

// FromEnv builds a Config from environment variables. Missing optional
// values fall back to defaults; required values are checked by Validate.
func FromEnv() Config {
	return Config{
		Host:             os.Getenv("ARCANNA_HOST"),
		ManagementAPIKey: os.Getenv("ARCANNA_MANAGEMENT_API_KEY"),
		InputAPIKey:      os.Getenv("ARCANNA_INPUT_API_KEY"),
		User:             envOrDefault("ARCANNA_USER", "mcp"),
		TransportMode:    envOrDefault("TRANSPORT_MODE", TransportStdio),
		SSEPort:          envOrDefault("PORT", "8000"),
		LogLevel:         envOrDefault("ARCANNA_MCP_LOG_LEVEL", "info"),
	}
}

// Validate reports the first configuration problem found. It must pass
// before any network call is attempted.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("ARCANNA_HOST is required")
	}
	if c.ManagementAPIKey == "" {
		return fmt.Errorf("ARCANNA_MANAGEMENT_API_KEY is required")
	}
	if c.TransportMode != TransportStdio && c.TransportMode != TransportSSE {
		return fmt.Errorf("TRANSPORT_MODE %q not supported, expected %q or %q",
			c.TransportMode, TransportStdio, TransportSSE)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
