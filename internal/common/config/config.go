// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Provider kinds selectable through provider.kind.
const (
	ProviderGemini       = "gemini"
	ProviderGeminiSDK    = "gemini-sdk"
	ProviderOpenAICompat = "openai-compat"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int   `mapstructure:"port"`
	ReadTimeout     int   `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int   `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int   `mapstructure:"shutdown_timeout"` // milliseconds
	MaxBodyBytes    int64 `mapstructure:"max_body_bytes"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ProviderConfig describes the single generative-text provider used for analysis.
type ProviderConfig struct {
	Kind        string  `mapstructure:"kind"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
