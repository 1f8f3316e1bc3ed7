package wizard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server: https://screening.example.org
token: abc123
timeout_seconds: 30
log_file: /tmp/tbscreen.log
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server != "https://screening.example.org" || cfg.Token != "abc123" {
		t.Errorf("Config not loaded: %+v", cfg)
	}
	if cfg.TimeoutSeconds != 30 || cfg.LogFile != "/tmp/tbscreen.log" {
		t.Errorf("Config not loaded: %+v", cfg)
	}
}

func TestLoadConfig_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("token: abc123\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server != DefaultConfig().Server {
		t.Errorf("Expected default server, got %q", cfg.Server)
	}
	if cfg.TimeoutSeconds != DefaultConfig().TimeoutSeconds {
		t.Errorf("Expected default timeout, got %d", cfg.TimeoutSeconds)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TBSCREEN_SERVER", "https://env.example.org")
	t.Setenv("TBSCREEN_TOKEN", "env-token")
	t.Setenv("TBSCREEN_LOG", "/tmp/env.log")
	t.Setenv("TBSCREEN_TIMEOUT", "15")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Server != "https://env.example.org" || cfg.Token != "env-token" {
		t.Errorf("Env overrides not applied: %+v", cfg)
	}
	if cfg.LogFile != "/tmp/env.log" || cfg.TimeoutSeconds != 15 {
		t.Errorf("Env overrides not applied: %+v", cfg)
	}
}

func TestApplyEnv_IgnoresBadTimeout(t *testing.T) {
	t.Setenv("TBSCREEN_TIMEOUT", "not-a-number")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.TimeoutSeconds != DefaultConfig().TimeoutSeconds {
		t.Errorf("Bad timeout must be ignored, got %d", cfg.TimeoutSeconds)
	}
}
