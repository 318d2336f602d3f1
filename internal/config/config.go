package config

import (
	"fmt"
	"time"

	"jobboard/pkg/api"
	"jobboard/pkg/logger"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	UI      UIConfig      `mapstructure:"ui"`
	Logger  logger.Config `mapstructure:"logger"`
}

type ServerConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	ShutdownTimeoutMs int    `mapstructure:"shutdown_timeout_ms"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ScraperConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	Path      string  `mapstructure:"path"`
	TimeoutMs int     `mapstructure:"timeout_ms"`
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

// ClientConfig maps the scraper section onto the client settings.
func (s ScraperConfig) ClientConfig() api.ClientConfig {
	return api.ClientConfig{
		BaseURL:   s.BaseURL,
		Path:      s.Path,
		Timeout:   time.Duration(s.TimeoutMs) * time.Millisecond,
		RateLimit: s.RateLimit,
		Burst:     s.Burst,
	}
}

type UIConfig struct {
	AsyncFetch     bool `mapstructure:"async_fetch"`
	RefreshSeconds int  `mapstructure:"refresh_seconds"`
	SessionTTLMin  int  `mapstructure:"session_ttl_min"`
}

func (u UIConfig) SessionTTL() time.Duration {
	return time.Duration(u.SessionTTLMin) * time.Minute
}

type Manager interface {
	Load(configPath string) (*Config, error)
	Reload() error
	GetConfig() *Config
}
