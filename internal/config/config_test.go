package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Actions.DryRun || !cfg.Actions.DeleteDuplicates || !cfg.Actions.CompressOrphans {
		t.Fatalf("actions should default to dry-run with both actions on: %+v", cfg.Actions)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"ui.tick":           func(c *Config) { c.UI.Tick = time.Millisecond },
		"ui.drain_budget":   func(c *Config) { c.UI.DrainBudget = 0 },
		"ui.log_keep_lines": func(c *Config) { c.UI.LogKeepLines = c.UI.LogMaxLines + 1 },
		"progress.capacity": func(c *Config) { c.Progress.Capacity = 0 },
		"logging.level":     func(c *Config) { c.Logging.Level = "loud" },
	}
	for field, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		err := cfg.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("actions:\n  dry_run: false\nui:\n  tick: 1s\n  drain_budget: 7\nvolumes:\n  exclude: [\"/boot\"]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(NewViper(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Actions.DryRun {
		t.Fatalf("dry_run should be overridden")
	}
	if !cfg.Actions.CompressOrphans {
		t.Fatalf("unset keys keep their defaults")
	}
	if cfg.UI.Tick != time.Second || cfg.UI.DrainBudget != 7 {
		t.Fatalf("ui not decoded: %+v", cfg.UI)
	}
	if len(cfg.Volumes.Exclude) != 1 || cfg.Volumes.Exclude[0] != "/boot" {
		t.Fatalf("volumes.exclude not decoded: %v", cfg.Volumes.Exclude)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing explicit config file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ZIPSWEEP_LOGGING_LEVEL", "debug")
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644)
	cfg, err := Load(NewViper(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("env should win over the file, got %q", cfg.Logging.Level)
	}
}

func TestSaveToFile_CanBeLoaded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.UI.DrainBudget = 3
	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
	got, err := Load(NewViper(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UI.DrainBudget != 3 || got.UI.Tick != cfg.UI.Tick {
		t.Fatalf("saved config not loaded back: %+v", got.UI)
	}
}
