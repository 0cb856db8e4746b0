// Package config provides configuration types and loading for intentd.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration. Every endpoint address,
// model name, timeout and retry bound is carried here rather than hard-coded
// so each component can be constructed explicitly.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Labeler  LabelerConfig
	Database DatabaseConfig
	Audit    AuditConfig
}

// ServerConfig configures the classification service HTTP surface.
type ServerConfig struct {
	Address string
}

// BackendConfig configures the generation backend.
type BackendConfig struct {
	Provider    string
	URL         string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

// LabelerConfig configures the resilient client used by the batch labeler.
type LabelerConfig struct {
	Endpoint   string
	MaxRetries int
	Timeout    time.Duration
	RetryDelay time.Duration
}

// DatabaseConfig locates the intent store.
type DatabaseConfig struct {
	Path string
}

// AuditConfig locates the append-only classification audit log.
type AuditConfig struct {
	Path string
}

// Load materializes the configuration from viper with defaults applied.
func Load() Config {
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("backend.provider", "ollama")
	viper.SetDefault("backend.url", "http://localhost:11434")
	viper.SetDefault("backend.model", "mistral")
	viper.SetDefault("backend.timeout", "30s")
	viper.SetDefault("backend.temperature", 0.1)
	viper.SetDefault("labeler.endpoint", "http://localhost:8000")
	viper.SetDefault("labeler.max_retries", 3)
	viper.SetDefault("labeler.timeout", "30s")
	viper.SetDefault("labeler.retry_delay", "1s")
	viper.SetDefault("database.path", "~/.local/share/intentd/intents.db")
	viper.SetDefault("audit.path", "pseudo_labels.jsonl")

	return Config{
		Server: ServerConfig{
			Address: viper.GetString("server.address"),
		},
		Backend: BackendConfig{
			Provider:    viper.GetString("backend.provider"),
			URL:         viper.GetString("backend.url"),
			Model:       viper.GetString("backend.model"),
			Timeout:     viper.GetDuration("backend.timeout"),
			Temperature: viper.GetFloat64("backend.temperature"),
		},
		Labeler: LabelerConfig{
			Endpoint:   viper.GetString("labeler.endpoint"),
			MaxRetries: viper.GetInt("labeler.max_retries"),
			Timeout:    viper.GetDuration("labeler.timeout"),
			RetryDelay: viper.GetDuration("labeler.retry_delay"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Audit: AuditConfig{
			Path: viper.GetString("audit.path"),
		},
	}
}
