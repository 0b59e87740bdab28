package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testYAML = `
name: voiceapi
environment: staging
version: "1.2.3"
server:
  port: 9090
database:
  dsn: /tmp/voiceapi-test.db
storage:
  provider: local
  dir: /tmp/voiceapi-audio
transcription:
  max_attempts: 5
whisper:
  api_key: sk-test
auth:
  secret: shhh
jobs:
  concurrency: 4
  rate_per_minute: 0.01
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected staging, got %s", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Transcription.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Transcription.MaxAttempts)
	}
	if cfg.Jobs.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Jobs.Concurrency)
	}
	if cfg.Jobs.RatePerMinute != 0.01 {
		t.Errorf("expected rate 0.01, got %f", cfg.Jobs.RatePerMinute)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  dsn: /tmp/voiceapi-test.db
whisper:
  api_key: sk-test
auth:
  secret: shhh
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Name != "voiceapi" {
		t.Errorf("expected default name, got %s", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected development, got %s", cfg.Environment)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Jobs.Concurrency != 3 {
		t.Errorf("expected default concurrency 3, got %d", cfg.Jobs.Concurrency)
	}
	if cfg.Transcription.MaxAttempts != 3 {
		t.Errorf("expected default 3 attempts, got %d", cfg.Transcription.MaxAttempts)
	}
	if cfg.Transcription.AttemptTimeout != 60*time.Second {
		t.Errorf("expected default 60s attempt timeout, got %s", cfg.Transcription.AttemptTimeout)
	}
}

func TestApplyDefaults_FillsSubConfigs(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Name != "voiceapi" {
		t.Errorf("expected default name, got %s", cfg.Name)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected default log format console, got %s", cfg.Logging.Format)
	}
	if cfg.Tracing.ServiceName != "voiceapi" {
		t.Errorf("expected tracing service name from config name, got %s", cfg.Tracing.ServiceName)
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("VOICEAPI_WHISPER_API_KEY", "sk-from-env")
	t.Setenv("VOICEAPI_AUTH_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, `
database:
  dsn: /tmp/voiceapi-test.db
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Whisper.APIKey != "sk-from-env" {
		t.Errorf("expected api key from env, got %q", cfg.Whisper.APIKey)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("expected auth secret from env, got %q", cfg.Auth.Secret)
	}
}

func TestLoad_RejectsInvalidEnvironment(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: testing
database:
  dsn: /tmp/voiceapi-test.db
whisper:
  api_key: sk-test
auth:
  secret: shhh
`))
	if err == nil {
		t.Fatal("expected error for invalid environment")
	}
	if !strings.Contains(err.Error(), "environment") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_RequiresWhisperKey(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  dsn: /tmp/voiceapi-test.db
auth:
  secret: shhh
`))
	if err == nil {
		t.Fatal("expected error for missing whisper api key")
	}
	if !strings.Contains(err.Error(), "whisper.api_key") {
		t.Errorf("unexpected error: %v", err)
	}
}
