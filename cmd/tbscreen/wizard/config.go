package wizard

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the connection settings for the diagnosis service.
type Config struct {
	Server         string `yaml:"server"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	LogFile        string `yaml:"log_file"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Server:         "http://localhost:8000",
		TimeoutSeconds: 60,
	}
}

// LoadConfig reads a YAML config file, filling unset fields from defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Server == "" {
		cfg.Server = DefaultConfig().Server
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultConfig().TimeoutSeconds
	}

	return cfg, nil
}

// ApplyEnv overrides config fields from the environment. Used so credentials
// can stay out of config files.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TBSCREEN_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("TBSCREEN_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("TBSCREEN_LOG"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("TBSCREEN_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSeconds = n
		}
	}
}
