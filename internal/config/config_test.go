package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "PORT", "LOG_LEVEL", "REDIS_ADDR", "REDIS_PASSWORD"} {
		t.Setenv(key, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("server:\n  name: guide-chat\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != DefaultModel {
		t.Errorf("expected default model %s, got %s", DefaultModel, cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != DefaultMaxTokens {
		t.Errorf("expected default maxTokens %d, got %d", DefaultMaxTokens, cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.BaseURL != DefaultBaseURL {
		t.Errorf("unexpected baseUrl: %s", cfg.OpenAI.BaseURL)
	}
	if d, _ := cfg.OpenAI.FirstByte(); d != DefaultFirstByteTimeout {
		t.Errorf("expected first byte timeout %v, got %v", DefaultFirstByteTimeout, d)
	}
	if len(cfg.CORS.AllowOrigins) != 1 || cfg.CORS.AllowOrigins[0] != "*" {
		t.Errorf("unexpected cors origins: %v", cfg.CORS.AllowOrigins)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("PORT", "9090")

	cfg, err := Parse([]byte(`
server:
  port: 3000
openai:
  apiKey: sk-from-file
  model: gpt-4o-mini
  baseUrl: http://localhost:1234/v1/
  requestTimeout: 45s
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-from-env" {
		t.Errorf("expected env api key to win, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("expected env model, got %s", cfg.OpenAI.Model)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected env port 9090, got %d", cfg.Server.Port)
	}
	if cfg.OpenAI.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.OpenAI.BaseURL)
	}
	if d, _ := cfg.OpenAI.Total(); d != 45*time.Second {
		t.Errorf("expected 45s request timeout, got %v", d)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey: %v", err)
	}
}

func TestParse_RedisAddrOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_ADDR", "cache.internal:6380")

	cfg, err := Parse([]byte("redis:\n  host: localhost\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Host != "cache.internal" || cfg.Redis.Port != 6380 {
		t.Errorf("expected REDIS_ADDR to enable and point Redis, got %+v", cfg.Redis)
	}

	t.Setenv("REDIS_ADDR", "no-port")
	cfg, err = Parse([]byte("redis:\n  host: localhost\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Redis.Enabled || cfg.Redis.Host != "localhost" {
		t.Errorf("malformed REDIS_ADDR must be ignored, got %+v", cfg.Redis)
	}
}

func TestParse_Invalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		yaml string
	}{
		{"bad duration", "openai:\n  firstByteTimeout: soon\n"},
		{"negative duration", "openai:\n  requestTimeout: -1s\n"},
		{"temperature", "openai:\n  temperature: 3.5\n"},
		{"redis without host", "redis:\n  enabled: true\n"},
		{"bad yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestRequireAPIKey_Missing(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("expected error when api key is missing")
	}
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "guide.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8181\n  name: guide-stream\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 8181 || cfg.Server.Name != "guide-stream" {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
