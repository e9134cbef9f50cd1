package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "TALKIE"
)

// Load resolves configuration in this order, highest first:
//  1. TALKIE_* environment variables (and the provider key aliases)
//  2. the config file at path, or config.yaml found on the search path
//  3. defaults
//
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Configuration, error) {
	// a missing .env is normal
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.talkie")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindProviderAliases(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Op: "read", Err: fmt.Errorf("failed to read config file: %w", err)}
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Op: "unmarshal", Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindProviderAliases lets the conventional vendor variables fill the
// provider section when no TALKIE_ variable is set.
func bindProviderAliases(v *viper.Viper) {
	_ = v.BindEnv("providers.openai.api_key", envPrefix+"_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.openai.base_url", envPrefix+"_PROVIDERS_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("providers.anthropic.api_key", envPrefix+"_PROVIDERS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("providers.ollama.host", envPrefix+"_PROVIDERS_OLLAMA_HOST", "OLLAMA_HOST")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout_seconds", 30)
	// streamed completions can run long, so writes are unbounded by default
	v.SetDefault("server.write_timeout_seconds", 0)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.static_dir", "client/dist")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "talkie.db")

	v.SetDefault("storage.audio_dir", "audios")
	v.SetDefault("storage.speech_file", "output.mp3")

	v.SetDefault("auth.token_ttl_hours", 72)
	v.SetDefault("auth.purge_interval_minutes", 60)

	v.SetDefault("providers.openai.max_tokens", 200)
	v.SetDefault("providers.openai.transcription_model", "whisper-1")
	v.SetDefault("providers.openai.speech_model", "tts-1")
	v.SetDefault("providers.openai.voice", "alloy")
	v.SetDefault("providers.openai.image_model", "dall-e-3")
	v.SetDefault("providers.openai.image_size", "1024x1024")
	v.SetDefault("providers.ollama.host", "http://localhost:11434")
	v.SetDefault("providers.anthropic.max_tokens", 1024)

	v.SetDefault("completions.default_provider", "openai")
	v.SetDefault("completions.default_model", "gpt-4o-mini")
	v.SetDefault("completions.persist_partial_on_failure", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "app.log")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
}
