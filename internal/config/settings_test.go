package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadSettingsFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("loadSettingsFromPath: %v", err)
	}
	if cfg.ServiceBaseURL() != defaultBaseURL {
		t.Fatalf("base url = %q, want default", cfg.ServiceBaseURL())
	}
	if cfg.Role() != "operations" {
		t.Fatalf("role = %q, want operations", cfg.Role())
	}
	if cfg.PollInterval() != 30*time.Second {
		t.Fatalf("poll interval = %v, want 30s", cfg.PollInterval())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("log level = %q, want info", cfg.LogLevel())
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[service]
base_url = "https://handover.example.test/api/"
timeout_seconds = 5

[operator]
role = "Support"
name = "Sam"
id = "U7"

[poll]
interval_seconds = 10

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadSettingsFromPath(path)
	if err != nil {
		t.Fatalf("loadSettingsFromPath: %v", err)
	}
	if got := cfg.ServiceBaseURL(); got != "https://handover.example.test/api" {
		t.Fatalf("base url = %q, trailing slash should be trimmed", got)
	}
	if cfg.ServiceTimeout() != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", cfg.ServiceTimeout())
	}
	if cfg.Role() != "support" {
		t.Fatalf("role = %q, want support (lowercased)", cfg.Role())
	}
	if cfg.OperatorName() != "Sam" || cfg.OperatorID() != "U7" {
		t.Fatalf("operator = %q/%q, want Sam/U7", cfg.OperatorName(), cfg.OperatorID())
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Fatalf("poll interval = %v, want 10s", cfg.PollInterval())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.LogLevel())
	}
}

func TestLoadSettingsPartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[operator]\nrole = \"support\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadSettingsFromPath(path)
	if err != nil {
		t.Fatalf("loadSettingsFromPath: %v", err)
	}
	if cfg.Role() != "support" {
		t.Fatalf("role = %q, want support", cfg.Role())
	}
	if cfg.ServiceBaseURL() != defaultBaseURL {
		t.Fatalf("base url = %q, want default", cfg.ServiceBaseURL())
	}
}

func TestLoadSettingsRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[service\nbase_url"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadSettingsFromPath(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}
