package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL().Hours() != 72 {
		t.Errorf("token ttl = %v, want 72h", cfg.Auth.TokenTTL())
	}
	if cfg.Providers.OpenAI.APIKey != "sk-test" {
		t.Errorf("openai key = %q, want alias from OPENAI_API_KEY", cfg.Providers.OpenAI.APIKey)
	}
	if cfg.Completions.PersistPartialOnFailure {
		t.Errorf("partial persistence must be off by default")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talkie.yaml")
	body := []byte("server:\n  port: 9100\ncompletions:\n  default_provider: ollama\n  default_model: llama3\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("TALKIE_SERVER_PORT", "9200")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, env should win over file", cfg.Server.Port)
	}
	if cfg.Completions.DefaultProvider != "ollama" || cfg.Completions.DefaultModel != "llama3" {
		t.Errorf("completions = %+v, want values from file", cfg.Completions)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Configuration{
		Server:      ServerConfig{Port: 0},
		Database:    DatabaseConfig{Driver: "mysql"},
		Auth:        AuthConfig{TokenTTLHours: 0},
		Completions: CompletionsConfig{DefaultProvider: "gemini"},
		Logging:     LoggingConfig{Level: "loud"},
	}
	err := cfg.Validate()
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	ve := err.(*ValidationError)
	joined := strings.Join(ve.Errors, "\n")
	for _, field := range []string{"server.port", "database.driver", "database.dsn", "storage.audio_dir", "auth.token_ttl_hours", "auth.purge_interval_minutes", "completions.default_provider", "logging.level"} {
		if !strings.Contains(joined, field) {
			t.Errorf("missing error for %s in %v", field, ve.Errors)
		}
	}
}
