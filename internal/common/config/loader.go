// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultPort            = 3000
	defaultReadTimeout     = 15000
	defaultWriteTimeout    = 90000
	defaultShutdownTimeout = 30000
	defaultMaxBodyBytes    = 100 << 10

	defaultGeminiBaseURL       = "https://generativelanguage.googleapis.com"
	defaultOpenAICompatBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultModel               = "gemini-2.0-flash"
	defaultTemperature         = 0.7
	defaultProviderTimeout     = 60000
)

// envBindings maps config keys to the environment variables that may set them.
// The first name listed wins when several are present.
var envBindings = map[string][]string{
	"app.environment":         {"APP_ENVIRONMENT"},
	"server.port":             {"PORT", "SERVER_PORT"},
	"server.read_timeout":     {"SERVER_READ_TIMEOUT"},
	"server.write_timeout":    {"SERVER_WRITE_TIMEOUT"},
	"server.shutdown_timeout": {"SERVER_SHUTDOWN_TIMEOUT"},
	"server.max_body_bytes":   {"SERVER_MAX_BODY_BYTES"},
	"provider.kind":           {"PROVIDER_KIND"},
	"provider.api_key":        {"GEMINI_API_KEY", "PROVIDER_API_KEY"},
	"provider.base_url":       {"PROVIDER_BASE_URL"},
	"provider.model":          {"PROVIDER_MODEL"},
	"provider.temperature":    {"PROVIDER_TEMPERATURE"},
	"provider.timeout":        {"PROVIDER_TIMEOUT"},
	"logging.level":           {"LOG_LEVEL"},
	"logging.format":          {"LOG_FORMAT"},
	"tracing.jaeger_endpoint": {"TRACING_JAEGER_ENDPOINT"},
}

// Load reads .env, configs/config.yaml and config.<env>.yaml, then applies
// environment overrides, defaults and validation.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// default set here so an explicit temperature of 0 is kept
	v.SetDefault("provider.temperature", defaultTemperature)
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		_ = v.BindEnv(args...)
	}
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking from the working directory
// up to the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in YAML string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Provider.APIKey == "" {
		if val := os.Getenv("GOOGLE_API_KEY"); val != "" {
			cfg.Provider.APIKey = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "resume-analyzer"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = defaultMaxBodyBytes
	}

	if cfg.Provider.Kind == "" {
		cfg.Provider.Kind = ProviderGemini
	}
	if cfg.Provider.BaseURL == "" {
		switch cfg.Provider.Kind {
		case ProviderOpenAICompat:
			cfg.Provider.BaseURL = defaultOpenAICompatBaseURL
		case ProviderGemini:
			cfg.Provider.BaseURL = defaultGeminiBaseURL
		}
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = defaultModel
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = defaultProviderTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}

	switch cfg.Provider.Kind {
	case ProviderGemini, ProviderGeminiSDK, ProviderOpenAICompat:
	default:
		return fmt.Errorf("provider.kind %q is not supported", cfg.Provider.Kind)
	}
	if cfg.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required (set GEMINI_API_KEY)")
	}
	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be between 0 and 2, got %v", cfg.Provider.Temperature)
	}
	if cfg.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}

	return nil
}
