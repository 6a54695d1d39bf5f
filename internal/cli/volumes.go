package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"zipsweep/internal/logger"
	"zipsweep/internal/volume"
)

// NewVolumesCommand creates the volumes command
func NewVolumesCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "List local volumes that can be scanned",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, !jsonOut)
			if err != nil {
				return err
			}
			defer logger.Close()

			vols, err := volume.List(cmd.Context(), volume.Host, cfg.Volumes.Exclude)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(vols)
			}
			for _, v := range vols {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", v.Root(), v.Display())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")

	return cmd
}
