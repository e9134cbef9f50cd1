// Package config loads server settings from defaults, an optional
// config.yaml and the environment.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Configuration is the full server configuration.
type Configuration struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Providers   ProvidersConfig   `mapstructure:"providers"`
	Completions CompletionsConfig `mapstructure:"completions"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	// StaticDir holds the built web client (index.html and assets).
	StaticDir string `mapstructure:"static_dir"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the gorm dialector.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

// StorageConfig places uploaded audio and synthesized speech on disk.
type StorageConfig struct {
	AudioDir   string `mapstructure:"audio_dir"`
	SpeechFile string `mapstructure:"speech_file"`
}

// AuthConfig controls token lifetime.
type AuthConfig struct {
	TokenTTLHours        int `mapstructure:"token_ttl_hours"`
	PurgeIntervalMinutes int `mapstructure:"purge_interval_minutes"`
}

// TokenTTL returns the token lifetime as a duration.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// PurgeInterval returns how often expired tokens are deleted.
func (a AuthConfig) PurgeInterval() time.Duration {
	return time.Duration(a.PurgeIntervalMinutes) * time.Minute
}

// ProvidersConfig holds upstream credentials and defaults.
type ProvidersConfig struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

// OpenAIConfig covers chat, transcription, speech and image calls.
type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	BaseURL            string `mapstructure:"base_url"`
	MaxTokens          int    `mapstructure:"max_tokens"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	SpeechModel        string `mapstructure:"speech_model"`
	Voice              string `mapstructure:"voice"`
	ImageModel         string `mapstructure:"image_model"`
	ImageSize          string `mapstructure:"image_size"`
}

// OllamaConfig points at a local or remote Ollama server.
type OllamaConfig struct {
	Host string `mapstructure:"host"`
}

// AnthropicConfig covers the Messages API.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// CompletionsConfig tunes the relay.
type CompletionsConfig struct {
	DefaultProvider string `mapstructure:"default_provider"`
	DefaultModel    string `mapstructure:"default_model"`
	// PersistPartialOnFailure records the text received before a stream
	// failed. When false a failed stream persists nothing.
	PersistPartialOnFailure bool `mapstructure:"persist_partial_on_failure"`
}

// LoggingConfig controls the slog handlers.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // text or json (console)
	File       string `mapstructure:"file"`   // empty disables the file sink
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Validate reports every invalid field at once.
func (c *Configuration) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("database.driver '%s' is invalid, must be one of: sqlite, postgres", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		problems = append(problems, "database.dsn is required")
	}
	if c.Storage.AudioDir == "" {
		problems = append(problems, "storage.audio_dir is required")
	}
	if c.Auth.TokenTTLHours <= 0 {
		problems = append(problems, "auth.token_ttl_hours must be positive")
	}
	if c.Auth.PurgeIntervalMinutes <= 0 {
		problems = append(problems, "auth.purge_interval_minutes must be positive")
	}
	switch c.Completions.DefaultProvider {
	case "openai", "ollama", "anthropic":
	default:
		problems = append(problems, fmt.Sprintf("completions.default_provider '%s' is invalid, must be one of: openai, ollama, anthropic", c.Completions.DefaultProvider))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level '%s' is invalid, must be one of: debug, info, warn, error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}
