package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"zipsweep/internal/logger"
	"zipsweep/internal/tui"
	"zipsweep/internal/volume"
)

// NewRootCommand creates the zipsweep command. Without a subcommand it runs
// the interactive UI.
func NewRootCommand(version string) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "zipsweep",
		Short: "Find files already stored in a same-named zip, and files with none",
		Long: `zipsweep walks a volume looking for files that sit next to a .zip of the
same base name. Files the archive already holds are duplicates and can be
deleted; files with no archive at all are orphans and can be compressed.

Run without a subcommand for the interactive UI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer logger.Close()

			root := ""
			if path != "" {
				if root, err = filepath.Abs(path); err != nil {
					return fmt.Errorf("failed to resolve path: %w", err)
				}
			}
			log := logger.Get()
			vols, err := volume.List(cmd.Context(), volume.Host, cfg.Volumes.Exclude)
			if err != nil {
				log.Warn().Err(err).Msg("volume enumeration failed")
			}
			log.Info().Str("root", root).Int("volumes", len(vols)).Msg("starting ui")

			if err := tui.Run(newEngine(cfg), cfg, root, vols); err != nil {
				return fmt.Errorf("tui error: %w", err)
			}
			return nil
		},
	}

	AddGlobalFlags(cmd)
	cmd.Flags().StringVarP(&path, "path", "p", "", "scan this directory instead of picking a volume")
	actionFlags(cmd.Flags())

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewProcessCommand())
	cmd.AddCommand(NewVolumesCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}
