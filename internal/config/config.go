package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port    string `yaml:"port" env:"SERVER_PORT"`
		Mode    string `yaml:"mode" env:"SERVER_MODE"`
		BaseURL string `yaml:"base_url" env:"BASE_URL"`
	} `yaml:"server"`

	Database struct {
		// URL selects the network store (PostgreSQL) when set; the
		// embedded store at Path is used otherwise.
		URL  string `yaml:"url" env:"DATABASE_URL"`
		Path string `yaml:"path" env:"DATABASE_PATH"`
	} `yaml:"database"`

	Storage struct {
		UploadDir     string `yaml:"upload_dir" env:"UPLOAD_DIR"`
		MaxUploadSize int64  `yaml:"max_upload_size" env:"MAX_UPLOAD_SIZE"`
	} `yaml:"storage"`

	Auth struct {
		SessionSecret     string `yaml:"session_secret" env:"SESSION_SECRET"`
		SessionExpiration string `yaml:"session_expiration" env:"SESSION_EXPIRATION"`
		SessionIssuer     string `yaml:"session_issuer" env:"SESSION_ISSUER"`
		APIKey            string `yaml:"api_key" env:"API_KEY"`
	} `yaml:"auth"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from an optional file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Server.BaseURL == "" {
		config.Server.BaseURL = "http://localhost:" + config.Server.Port
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Path = "students.db"

	config.Storage.UploadDir = "uploads"
	config.Storage.MaxUploadSize = 5 * 1024 * 1024

	config.Auth.SessionExpiration = "24h"
	config.Auth.SessionIssuer = "studenthub"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid.
// The session secret and API key are deliberately given no defaults:
// running with a known secret is worse than not starting.
func validateConfig(config *Config) error {
	if config.Auth.SessionSecret == "" {
		return fmt.Errorf("session secret is required (set SESSION_SECRET)")
	}

	if config.Auth.APIKey == "" {
		return fmt.Errorf("API key is required (set API_KEY)")
	}

	if _, err := time.ParseDuration(config.Auth.SessionExpiration); err != nil {
		return fmt.Errorf("invalid session expiration format: %w", err)
	}

	if config.Database.URL == "" && config.Database.Path == "" {
		return fmt.Errorf("either a database URL or an embedded database path is required")
	}

	if config.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	return nil
}

// UsesNetworkStore reports whether the network store is configured.
func (c *Config) UsesNetworkStore() bool {
	return c.Database.URL != ""
}
