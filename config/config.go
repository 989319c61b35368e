// Package config loads the dashboard configuration from YAML with .env and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Models struct {
		Dir            string `yaml:"dir"`
		Regression     string `yaml:"regression"`
		Classification string `yaml:"classification"`
		LabelEncoder   string `yaml:"label_encoder"`
		Watch          bool   `yaml:"watch"`
	} `yaml:"models"`
	Predict struct {
		CacheSize int `yaml:"cache_size"`
	} `yaml:"predict"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Http.Port = 8501
	c.Http.ReadTimeout = 15 * time.Second
	c.Http.WriteTimeout = 15 * time.Second
	c.Http.MaxBodyBytes = 64 << 10
	c.Models.Dir = "./models"
	c.Models.Regression = "regression_pipeline.json"
	c.Models.Classification = "classification_pipeline.json"
	c.Models.LabelEncoder = "label_encoder.json"
	c.Models.Watch = true
	c.Predict.CacheSize = 256
	c.Log.Level = "info"
	c.Log.MaxSizeMB = 50
	c.Log.MaxBackups = 5
	c.Log.MaxAgeDays = 28
	return &c
}

// Load reads path over the defaults, then applies .env and STEEL_* overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(config); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	_ = godotenv.Load()
	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("STEEL_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STEEL_HTTP_PORT: %w", err)
		}
		c.Http.Port = port
	}
	if v := os.Getenv("STEEL_MODEL_DIR"); v != "" {
		c.Models.Dir = v
	}
	if v := os.Getenv("STEEL_MODEL_WATCH"); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STEEL_MODEL_WATCH: %w", err)
		}
		c.Models.Watch = watch
	}
	if v := os.Getenv("STEEL_CACHE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STEEL_CACHE_SIZE: %w", err)
		}
		c.Predict.CacheSize = size
	}
	if v := os.Getenv("STEEL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STEEL_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.MaxBodyBytes <= 0 {
		return errors.New("http.max_body_bytes must be positive")
	}
	if c.Models.Regression == "" || c.Models.Classification == "" || c.Models.LabelEncoder == "" {
		return errors.New("models: artifact names must not be empty")
	}
	if c.Predict.CacheSize < 0 {
		return errors.New("predict.cache_size must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
