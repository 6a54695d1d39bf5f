package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zipsweep/internal/config"
	"zipsweep/internal/logger"
	"zipsweep/internal/scanner"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "scan PATH",
		Short: "Report duplicates and orphans without changing anything",
		Long: `Scan PATH breadth-first. In every directory, files that share a base name
with a .zip archive are duplicates when the archive already holds an entry of
the same name and size; files with no same-named archive are orphans.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, !jsonOut)
			if err != nil {
				return err
			}
			defer logger.Close()

			start := time.Now()
			res, root, err := runScan(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeScanJSON(cmd, root, res, time.Since(start))
			}
			printScan(cmd, root, res, time.Since(start))
			if res.Status == scanner.Failed {
				return res.Err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON instead of a table")

	return cmd
}

// runScan scans path headlessly, cancelling on interrupt.
func runScan(cmd *cobra.Command, cfg *config.Config, path string) (scanner.Result, string, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return scanner.Result{}, "", fmt.Errorf("failed to resolve path: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng := newEngine(cfg)
	done, err := eng.StartScan(root)
	if err != nil {
		return scanner.Result{}, root, err
	}
	return follow(ctx, eng, done, newBar("Scanning")), root, nil
}

func printScan(cmd *cobra.Command, root string, res scanner.Result, took time.Duration) {
	out := cmd.OutOrStdout()
	dups, orphans := res.Split()
	fmt.Fprintf(out, "zipsweep scan\nroot: %s\nstatus: %s\n", root, res.Status)
	fmt.Fprintln(out, "----------------------------------------------")
	var dupBytes, orphanBytes int64
	for _, it := range dups {
		dupBytes += it.Size
		fmt.Fprintf(out, "duplicate\t%s\t%s\t%s\n", it.Path, humanize.IBytes(uint64(it.Size)), filepath.Base(it.ArchivePath))
	}
	for _, it := range orphans {
		orphanBytes += it.Size
		fmt.Fprintf(out, "orphan\t%s\t%s\n", it.Path, humanize.IBytes(uint64(it.Size)))
	}
	fmt.Fprintln(out, "----------------------------------------------")
	fmt.Fprintf(out, "Duplicates: %d (%s)\n", len(dups), humanize.IBytes(uint64(dupBytes)))
	fmt.Fprintf(out, "Orphans: %d (%s)\n", len(orphans), humanize.IBytes(uint64(orphanBytes)))
	fmt.Fprintf(out, "Directories: %d/%d\n", res.VisitedDirs, res.TotalDirs)
	fmt.Fprintf(out, "Duration: %s\n", took.Round(time.Millisecond))
}

type scanReport struct {
	Root        string             `json:"root"`
	Status      scanner.Status     `json:"status"`
	Error       string             `json:"error,omitempty"`
	TotalDirs   int                `json:"totalDirs"`
	VisitedDirs int                `json:"visitedDirs"`
	Duplicates  []scanner.FileItem `json:"duplicates"`
	Orphans     []scanner.FileItem `json:"orphans"`
	Duration    string             `json:"duration"`
}

func writeScanJSON(cmd *cobra.Command, root string, res scanner.Result, took time.Duration) error {
	dups, orphans := res.Split()
	rep := scanReport{
		Root:        root,
		Status:      res.Status,
		TotalDirs:   res.TotalDirs,
		VisitedDirs: res.VisitedDirs,
		Duplicates:  nonNil(dups),
		Orphans:     nonNil(orphans),
		Duration:    took.String(),
	}
	if res.Err != nil {
		rep.Error = res.Err.Error()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	if res.Status == scanner.Failed {
		return res.Err
	}
	return nil
}

func nonNil(items []scanner.FileItem) []scanner.FileItem {
	if items == nil {
		return []scanner.FileItem{}
	}
	return items
}
