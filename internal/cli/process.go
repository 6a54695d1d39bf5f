package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"zipsweep/internal/actions"
	"zipsweep/internal/config"
	"zipsweep/internal/engine"
	"zipsweep/internal/logger"
	"zipsweep/internal/scanner"
)

var errAborted = errors.New("aborted by user")

// NewProcessCommand creates the process command
func NewProcessCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "process PATH",
		Short: "Scan PATH, then delete duplicates and compress orphans",
		Long: `Scan PATH and act on everything found: duplicates are deleted and orphans
are compressed into a same-named .zip which is verified before the original is
removed. Dry run is on by default; pass --dry-run=false to change files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer logger.Close()

			res, _, err := runScan(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			switch res.Status {
			case scanner.Failed:
				return res.Err
			case scanner.Cancelled:
				return errAborted
			}

			opts := actionOptions(cfg)
			n := countActionable(res.Items, opts)
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to process.")
				return nil
			}
			if !opts.DryRun && !yes {
				if err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), res.Items, opts); err != nil {
					return err
				}
			}

			out, err := runAction(cmd, cfg, res.Items, opts)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out, opts)
			if len(out.Failures) > 0 {
				return fmt.Errorf("%d item(s) failed", len(out.Failures))
			}
			return nil
		},
	}

	actionFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func actionOptions(cfg *config.Config) actions.Options {
	return actions.Options{
		DryRun:           cfg.Actions.DryRun,
		DeleteDuplicates: cfg.Actions.DeleteDuplicates,
		CompressOrphans:  cfg.Actions.CompressOrphans,
	}
}

func countActionable(items []scanner.FileItem, opts actions.Options) int {
	n := 0
	for _, it := range items {
		if (it.Kind == scanner.Duplicate && opts.DeleteDuplicates) || (it.Kind == scanner.Orphan && opts.CompressOrphans) {
			n++
		}
	}
	return n
}

// confirm asks twice before files are changed.
func confirm(in io.Reader, out io.Writer, items []scanner.FileItem, opts actions.Options) error {
	dups, orphans := scanner.Result{Items: items}.Split()
	fmt.Fprintln(out, "Process selected items?")
	if opts.DeleteDuplicates && len(dups) > 0 {
		fmt.Fprintf(out, "- Delete %d duplicates\n", len(dups))
	}
	if opts.CompressOrphans && len(orphans) > 0 {
		fmt.Fprintf(out, "- Compress %d orphans\n", len(orphans))
	}
	fmt.Fprintln(out, "WARNING: Files will be permanently modified/deleted!")

	r := bufio.NewReader(in)
	for _, prompt := range []string{"Continue? [y/N]: ", "Are you REALLY sure? This action cannot be undone! [y/N]: "} {
		fmt.Fprint(out, prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return errAborted
		}
		if ans := strings.ToLower(strings.TrimSpace(line)); ans != "y" && ans != "yes" {
			return errAborted
		}
	}
	return nil
}

func runAction(cmd *cobra.Command, cfg *config.Config, items []scanner.FileItem, opts actions.Options) (actions.Outcome, error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng := newEngine(cfg)
	done, err := eng.StartAction(items, opts)
	if err != nil {
		if errors.Is(err, engine.ErrNothingSelected) {
			return actions.Outcome{Status: scanner.Completed}, nil
		}
		return actions.Outcome{}, err
	}
	return follow(ctx, eng, done, newBar("Processing")), nil
}

func printOutcome(w io.Writer, out actions.Outcome, opts actions.Options) {
	mode := ""
	if opts.DryRun {
		mode = " (dry run, no files changed)"
	}
	fmt.Fprintf(w, "Processing %s%s\n", out.Status, mode)
	fmt.Fprintf(w, "Deleted: %d  Compressed: %d  Skipped: %d  Failed: %d\n",
		out.Deleted, out.Compressed, out.Skipped, len(out.Failures))
	fmt.Fprintf(w, "Freed: %s\n", humanize.IBytes(uint64(out.Freed)))
	for _, f := range out.Failures {
		fmt.Fprintf(w, "  %s: %v\n", f.Item.Path, f.Err)
	}
}
