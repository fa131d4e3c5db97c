package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := Default()
	if cfg.TerminateGracePeriod != 50*time.Millisecond {
		t.Fatalf("TerminateGracePeriod = %v, want 50ms", cfg.TerminateGracePeriod)
	}
	if cfg.BackgroundDetectPolls != 3 {
		t.Fatalf("BackgroundDetectPolls = %d, want 3", cfg.BackgroundDetectPolls)
	}
	if cfg.PollInterval != 30*time.Millisecond {
		t.Fatalf("PollInterval = %v, want 30ms", cfg.PollInterval)
	}
}

func TestLoadYAMLOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wyshell.yaml")
	yamlBody := "builtin_watch_dir: /opt/wyshell/builtins\nbackground_detect_polls: 5\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.BuiltinWatchDir = "/opt/wyshell/builtins"
	want.BackgroundDetectPolls = 5
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSONValidatesAgainstSchema(t *testing.T) {
	_, err := LoadJSON([]byte(`{"background_detect_polls": 0}`))
	if err == nil {
		t.Fatal("expected a schema validation error for background_detect_polls below minimum")
	}
}

func TestLoadJSONAcceptsValidDocument(t *testing.T) {
	cfg, err := LoadJSON([]byte(`{"terminate_grace_period_ms": 75, "null_device_path": "NUL"}`))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if cfg.TerminateGracePeriod != 75*time.Millisecond {
		t.Fatalf("TerminateGracePeriod = %v, want 75ms", cfg.TerminateGracePeriod)
	}
	if cfg.NullDevicePath != "NUL" {
		t.Fatalf("NullDevicePath = %q", cfg.NullDevicePath)
	}
}

func TestLoadJSONRejectsUnknownField(t *testing.T) {
	_, err := LoadJSON([]byte(`{"bogus_field": true}`))
	if err == nil {
		t.Fatal("expected a schema validation error for an unknown field")
	}
}
