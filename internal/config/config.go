package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Scan     ScanConfig     `mapstructure:"scan" yaml:"scan"`
	Actions  ActionsConfig  `mapstructure:"actions" yaml:"actions"`
	UI       UIConfig       `mapstructure:"ui" yaml:"ui"`
	Progress ProgressConfig `mapstructure:"progress" yaml:"progress"`
	Volumes  VolumesConfig  `mapstructure:"volumes" yaml:"volumes"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

type ScanConfig struct {
	SkipHidden bool `mapstructure:"skip_hidden" yaml:"skip_hidden"`
}

// ActionsConfig holds the defaults for the process step.
type ActionsConfig struct {
	DryRun           bool `mapstructure:"dry_run" yaml:"dry_run"`
	DeleteDuplicates bool `mapstructure:"delete_duplicates" yaml:"delete_duplicates"`
	CompressOrphans  bool `mapstructure:"compress_orphans" yaml:"compress_orphans"`
}

// UIConfig controls how the TUI drains and keeps log lines.
type UIConfig struct {
	Tick         time.Duration `mapstructure:"tick" yaml:"tick"`
	DrainBudget  int           `mapstructure:"drain_budget" yaml:"drain_budget"`
	LogMaxLines  int           `mapstructure:"log_max_lines" yaml:"log_max_lines"`
	LogKeepLines int           `mapstructure:"log_keep_lines" yaml:"log_keep_lines"`
}

type ProgressConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

type VolumesConfig struct {
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"` // empty = no log file
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{SkipHidden: true},
		Actions: ActionsConfig{
			DryRun:           true,
			DeleteDuplicates: true,
			CompressOrphans:  true,
		},
		UI: UIConfig{
			Tick:         250 * time.Millisecond,
			DrainBudget:  20,
			LogMaxLines:  1000,
			LogKeepLines: 800,
		},
		Progress: ProgressConfig{Capacity: 10000},
		Volumes:  VolumesConfig{Exclude: []string{}},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.UI.Tick < 10*time.Millisecond {
		return &ValidationError{Field: "ui.tick", Message: "must be at least 10ms"}
	}
	if c.UI.DrainBudget < 1 {
		return &ValidationError{Field: "ui.drain_budget", Message: "must be at least 1"}
	}
	if c.UI.LogKeepLines < 1 || c.UI.LogKeepLines > c.UI.LogMaxLines {
		return &ValidationError{Field: "ui.log_keep_lines", Message: "must be between 1 and ui.log_max_lines"}
	}
	if c.Progress.Capacity < 1 {
		return &ValidationError{Field: "progress.capacity", Message: "must be at least 1"}
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return &ValidationError{Field: "logging.level", Message: "must be 'debug', 'info', 'warn', or 'error'"}
	}
	return nil
}

// SetDefaults registers every default on v so flags and env can override them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("scan.skip_hidden", d.Scan.SkipHidden)
	v.SetDefault("actions.dry_run", d.Actions.DryRun)
	v.SetDefault("actions.delete_duplicates", d.Actions.DeleteDuplicates)
	v.SetDefault("actions.compress_orphans", d.Actions.CompressOrphans)
	v.SetDefault("ui.tick", d.UI.Tick)
	v.SetDefault("ui.drain_budget", d.UI.DrainBudget)
	v.SetDefault("ui.log_max_lines", d.UI.LogMaxLines)
	v.SetDefault("ui.log_keep_lines", d.UI.LogKeepLines)
	v.SetDefault("progress.capacity", d.Progress.Capacity)
	v.SetDefault("volumes.exclude", d.Volumes.Exclude)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// NewViper returns a viper instance with defaults, env binding (ZIPSWEEP_*)
// and the standard search paths.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := DefaultConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("zipsweep")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (explicit path, or the search paths when empty)
// and decodes v into a validated Config. A missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes cfg as YAML.
func SaveToFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfigDir is $HOME/.config/zipsweep.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "zipsweep"), nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
