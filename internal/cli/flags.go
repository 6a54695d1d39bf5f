package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"zipsweep/internal/config"
	"zipsweep/internal/logger"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/zipsweep/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().Bool("skip-hidden", true, "skip hidden and system directories")
	cmd.PersistentFlags().String("log-file", "", "append logs to this file")
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// actionFlags registers the flags that choose what a processing run does.
func actionFlags(fs *pflag.FlagSet) {
	fs.Bool("dry-run", true, "only report what would be deleted or compressed")
	fs.Bool("delete", true, "delete duplicates already stored in their archive")
	fs.Bool("compress", true, "compress orphans into a same-named archive")
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"skip-hidden": "scan.skip_hidden",
	"log-file":    "logging.file",
	"dry-run":     "actions.dry_run",
	"delete":      "actions.delete_duplicates",
	"compress":    "actions.compress_orphans",
}

// loadConfig merges defaults, the config file, ZIPSWEEP_* env and the flags
// of cmd that were set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, globalFlags.ConfigFile)
	if err != nil {
		return nil, err
	}
	switch {
	case globalFlags.Verbose:
		cfg.Logging.Level = "debug"
	case globalFlags.Quiet:
		cfg.Logging.Level = "error"
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// setup loads the configuration and starts the logger. console selects a
// human-readable stderr writer in addition to the optional log file.
func setup(cmd *cobra.Command, console bool) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File, console); err != nil {
		return nil, fmt.Errorf("failed to initialise logging: %w", err)
	}
	return cfg, nil
}
