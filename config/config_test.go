package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Http.Port != 8501 || config.Models.Dir != "./models" || config.Predict.CacheSize != 256 {
		t.Fatalf("unexpected defaults: %+v", config)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9000
  read_timeout: 5s
models:
  dir: /srv/models
  watch: false
predict:
  cache_size: 0
log:
  level: debug
  file: /var/log/steel.log
`)
	config, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Http.Port != 9000 || config.Http.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected http config: %+v", config.Http)
	}
	if config.Http.WriteTimeout != 15*time.Second {
		t.Fatalf("unset keys keep defaults, got %v", config.Http.WriteTimeout)
	}
	if config.Models.Dir != "/srv/models" || config.Models.Watch {
		t.Fatalf("unexpected models config: %+v", config.Models)
	}
	if config.Models.Regression != "regression_pipeline.json" {
		t.Fatalf("expected default artifact name, got %q", config.Models.Regression)
	}
	if config.Log.Level != "debug" || config.Log.File != "/var/log/steel.log" {
		t.Fatalf("unexpected log config: %+v", config.Log)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STEEL_HTTP_PORT", "8600")
	t.Setenv("STEEL_MODEL_DIR", "/opt/models")
	t.Setenv("STEEL_CACHE_SIZE", "10")
	t.Setenv("STEEL_LOG_LEVEL", "warn")
	config, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Http.Port != 8600 || config.Models.Dir != "/opt/models" || config.Predict.CacheSize != 10 || config.Log.Level != "warn" {
		t.Fatalf("env overrides not applied: %+v", config)
	}
}

func TestEnvOverrideBadValue(t *testing.T) {
	t.Setenv("STEEL_HTTP_PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":      func(c *Config) { c.Http.Port = 70000 },
		"body":      func(c *Config) { c.Http.MaxBodyBytes = 0 },
		"artifact":  func(c *Config) { c.Models.LabelEncoder = "" },
		"cache":     func(c *Config) { c.Predict.CacheSize = -1 },
		"log level": func(c *Config) { c.Log.Level = "verbose" },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "http: [")); err == nil {
		t.Fatal("expected decode error")
	}
}
