package logger

import (
	"testing"
)

func TestNew_ParsesLevel(t *testing.T) {
	cfg := &Config{Level: "debug", Format: "json", Output: "stdout"}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger, got nil")
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := &Config{Level: "bogus", Format: "json", Output: "stdout"}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger, got nil")
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format console, got %s", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output stdout, got %s", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "warn", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg = Config{Level: "noisy", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}

	cfg = Config{Level: "info", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestFields_BuildsMap(t *testing.T) {
	m := Fields("op", "transcribe", "attempt", 2)
	if m["op"] != "transcribe" {
		t.Errorf("expected op=transcribe, got %v", m["op"])
	}
	if m["attempt"] != 2 {
		t.Errorf("expected attempt=2, got %v", m["attempt"])
	}
}

func TestFields_IgnoresDanglingKey(t *testing.T) {
	m := Fields("op", "transcribe", "dangling")
	if len(m) != 1 {
		t.Errorf("expected 1 entry, got %d", len(m))
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test").WithComponent("jobs")
	if l == nil {
		t.Fatal("expected logger, got nil")
	}
}

func TestGetGlobalLogger_CreatesDefault(t *testing.T) {
	globalLogger = nil
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected global logger, got nil")
	}
}
