package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Coin    string        `yaml:"coin"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Labels struct {
		Layout   string `yaml:"layout"`
		Timezone string `yaml:"timezone"`
	} `yaml:"labels"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LABEL_TIMEZONE"); v != "" {
		cfg.Labels.Timezone = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://api.coingecko.com"
	}
	if cfg.DataSource.Coin == "" {
		cfg.DataSource.Coin = "bitcoin"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Labels.Layout == "" {
		cfg.Labels.Layout = "1/2/2006"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.DataSource.Timeout < 0 {
		return fmt.Errorf("data_source.timeout must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("labels.timezone: %w", err)
	}
	if c.Schedule.RefreshCron != "" {
		p := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := p.Parse(c.Schedule.RefreshCron); err != nil {
			return fmt.Errorf("schedule.refresh_cron: %w", err)
		}
	}
	return nil
}

// Location returns the zone labels are rendered in; empty means the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Labels.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Labels.Timezone)
}
