package analyzer

import (
	"time"

	"resume-analyzer/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Timeout:      config.GetDuration(cfg.Provider.Timeout),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}
}
