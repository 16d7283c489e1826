package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.DataSource.BaseURL != "https://api.coingecko.com" {
		t.Errorf("base url = %q", cfg.DataSource.BaseURL)
	}
	if cfg.DataSource.Coin != "bitcoin" {
		t.Errorf("coin = %q", cfg.DataSource.Coin)
	}
	if cfg.DataSource.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.DataSource.Timeout)
	}
	if cfg.Labels.Layout != "1/2/2006" {
		t.Errorf("layout = %q", cfg.Labels.Layout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  addr: "127.0.0.1:9000"
data_source:
  base_url: "http://file.example"
  timeout: 5s
schedule:
  refresh_cron: "0 */5 * * * *"
labels:
  timezone: "UTC"
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COINGECKO_BASE_URL", "http://env.example")
	t.Setenv("COINGECKO_API_KEY", "k")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.DataSource.BaseURL != "http://env.example" {
		t.Errorf("env override not applied: %q", cfg.DataSource.BaseURL)
	}
	if cfg.DataSource.APIKey != "k" {
		t.Errorf("api key = %q", cfg.DataSource.APIKey)
	}
	if cfg.DataSource.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.DataSource.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	loc, _ := cfg.Location()
	if loc != time.UTC {
		t.Errorf("location = %v", loc)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"bad cron", func(c *Config) { c.Schedule.RefreshCron = "every now and then" }, true},
		{"bad timezone", func(c *Config) { c.Labels.Timezone = "Mars/Olympus" }, true},
		{"negative timeout", func(c *Config) { c.DataSource.Timeout = -time.Second }, true},
		{"descriptor cron", func(c *Config) { c.Schedule.RefreshCron = "@every 1m" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
