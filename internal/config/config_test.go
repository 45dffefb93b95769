package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// isolate points the user config directory at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	return tmp
}

func flagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String(KeyRegistry, "", "")
	cmd.Flags().String(KeyLogLevel, "info", "")
	return cmd
}

// TestLoadDefaults verifies built-in values with no file, env or flags.
func TestLoadDefaults(t *testing.T) {
	isolate(t)

	got, err := Load(&cobra.Command{}, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "info")
	}
	if got.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", got.Timeout)
	}
	if got.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", got.Concurrency)
	}
}

// TestLoadUserFile verifies che-plugins.yaml in the user config directory is read.
func TestLoadUserFile(t *testing.T) {
	tmp := isolate(t)
	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if filepath.Dir(filepath.Dir(path)) != tmp {
		t.Skipf("user config dir %s is not under XDG_CONFIG_HOME on this platform", path)
	}
	os.MkdirAll(filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte("registry: https://reg.example.com\ntimeout: 3s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(&cobra.Command{}, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Registry != "https://reg.example.com" {
		t.Errorf("Registry = %q", got.Registry)
	}
	if got.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", got.Timeout)
	}
}

// TestLoadExplicitFile verifies --config wins over the search paths.
func TestLoadExplicitFile(t *testing.T) {
	tmp := isolate(t)
	file := filepath.Join(tmp, "custom.yaml")
	os.WriteFile(file, []byte("log-level: debug\nlocal-index: /tmp/index.json\n"), 0o600)

	got, err := Load(&cobra.Command{}, file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "debug")
	}
	if got.LocalIndex != "/tmp/index.json" {
		t.Errorf("LocalIndex = %q", got.LocalIndex)
	}
}

// TestLoadExplicitFileMissing verifies a missing explicit file is an error.
func TestLoadExplicitFileMissing(t *testing.T) {
	tmp := isolate(t)
	if _, err := Load(&cobra.Command{}, filepath.Join(tmp, "nope.yaml")); err == nil {
		t.Error("Load() with missing explicit file should fail, got nil")
	}
}

// TestLoadEnvOverridesFile verifies CHE_PLUGINS_* beats the config file.
func TestLoadEnvOverridesFile(t *testing.T) {
	tmp := isolate(t)
	file := filepath.Join(tmp, "cfg.yaml")
	os.WriteFile(file, []byte("log-level: debug\n"), 0o600)
	t.Setenv("CHE_PLUGINS_LOG_LEVEL", "warn")

	got, err := Load(&cobra.Command{}, file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "warn")
	}
}

// TestLoadFlagOverridesEnv verifies a changed flag beats everything else.
func TestLoadFlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CHE_PLUGINS_REGISTRY", "https://env.example.com")

	cmd := flagCommand()
	if err := cmd.Flags().Set(KeyRegistry, "https://flag.example.com"); err != nil {
		t.Fatal(err)
	}
	got, err := Load(cmd, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Registry != "https://flag.example.com" {
		t.Errorf("Registry = %q, want the flag value", got.Registry)
	}
	// Unchanged flags do not shadow defaults.
	if got.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "info")
	}
}

// TestLoadInvalidTimeout verifies a non-positive timeout is rejected.
func TestLoadInvalidTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("CHE_PLUGINS_TIMEOUT", "0s")
	if _, err := Load(&cobra.Command{}, ""); err == nil {
		t.Error("Load() with zero timeout should fail, got nil")
	}
}
