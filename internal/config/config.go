// Package config loads the shell's startup configuration: the one piece of
// "command-line surface" spec.md leaves entirely external (SPEC_FULL.md
// §6 "added"). None of this changes execution semantics — it only tunes
// constants the rest of the core otherwise hard-codes.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every ambient tuning knob spec.md's components need but
// spec.md itself never surfaces as a setting.
type Config struct {
	// NullDevicePath overrides the OS null-device path internal/redirect
	// opens for StdinFromNull/StdoutToNull/StderrToNull. Empty means use
	// the platform default (os.DevNull).
	NullDevicePath string `yaml:"null_device_path" json:"null_device_path"`

	// TerminateGracePeriod is internal/cancel's polite-to-forceful sweep
	// delay (spec.md §4.4: "50 ms").
	TerminateGracePeriod time.Duration `yaml:"terminate_grace_period" json:"terminate_grace_period"`

	// BackgroundDetectPolls is the number of consecutive polling passes a
	// buffered Ctrl-B must survive before internal/cancel treats it as a
	// background request (spec.md §4.4: "three consecutive polling passes").
	BackgroundDetectPolls int `yaml:"background_detect_polls" json:"background_detect_polls"`

	// PollInterval is the spacing between internal/cancel's wait-loop
	// polls (spec.md §4.4: "30 ms" per poll, "100 ms" for the stuck-task
	// check — callers pick whichever constant applies).
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// BuiltinWatchDir, if set, is the directory internal/registry.Watch
	// monitors for built-in module hot-reload (spec.md §4.5's module
	// loader, extended with fsnotify-driven reload).
	BuiltinWatchDir string `yaml:"builtin_watch_dir" json:"builtin_watch_dir"`
}

// Default returns the configuration the shell runs with absent a config
// file, matching the literal constants spec.md §4.4 names.
func Default() Config {
	return Config{
		TerminateGracePeriod: 50 * time.Millisecond,
		BackgroundDetectPolls: 3,
		PollInterval:          30 * time.Millisecond,
	}
}

// Load reads and parses a YAML config file, starting from Default() so an
// omitted field keeps its default rather than zeroing out.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
