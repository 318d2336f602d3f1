package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "JOBBOARD"

type manager struct {
	mu     sync.RWMutex
	config *Config
	viper  *viper.Viper
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

// Load reads configPath on top of the built-in defaults. A missing file is
// not an error; environment variables (JOBBOARD_SERVER_PORT, ...) and a
// local .env file still apply.
func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = godotenv.Load()
	m.setupViper(configPath)

	if err := m.read(); err != nil {
		return nil, err
	}
	return m.config, nil
}

func (m *manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("config not loaded")
	}
	return m.read()
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) read() error {
	if m.viper.ConfigFileUsed() != "" {
		if err := m.viper.ReadInConfig(); err != nil && !isNotExist(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.config = &config
	return nil
}

func (m *manager) setupViper(configPath string) {
	setDefaults(m.viper)

	if configPath != "" {
		m.viper.SetConfigFile(configPath)
	}

	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_ms", 5000)

	v.SetDefault("scraper.base_url", "https://wellfoundscrap.vercel.app")
	v.SetDefault("scraper.path", "/scrape")
	v.SetDefault("scraper.timeout_ms", 30000)
	v.SetDefault("scraper.rate_limit", 0.0)
	v.SetDefault("scraper.burst", 1)

	v.SetDefault("ui.async_fetch", true)
	v.SetDefault("ui.refresh_seconds", 1)
	v.SetDefault("ui.session_ttl_min", 30)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.time_format", "")
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.ShutdownTimeoutMs <= 0 {
		return fmt.Errorf("shutdown_timeout_ms must be positive")
	}

	if config.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper base_url cannot be empty")
	}

	if config.Scraper.TimeoutMs <= 0 {
		return fmt.Errorf("scraper timeout_ms must be positive")
	}

	if config.Scraper.RateLimit < 0 {
		return fmt.Errorf("scraper rate_limit cannot be negative")
	}

	if config.UI.RefreshSeconds < 0 {
		return fmt.Errorf("refresh_seconds cannot be negative")
	}

	if config.UI.SessionTTLMin <= 0 {
		return fmt.Errorf("session_ttl_min must be positive")
	}

	return nil
}
