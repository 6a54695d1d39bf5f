package actions

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"zipsweep/internal/archive"
	"zipsweep/internal/compressor"
	"zipsweep/internal/deleter"
	"zipsweep/internal/progress"
	"zipsweep/internal/scanner"
)

// Options selects what a run does.
type Options struct {
	DryRun           bool
	DeleteDuplicates bool
	CompressOrphans  bool
}

type Failure struct {
	Item scanner.FileItem
	Err  error
}

// Outcome summarises a run. Consumed lists items whose file no longer exists
// because of this run; dry runs consume nothing.
type Outcome struct {
	Status     scanner.Status
	Consumed   []scanner.FileItem
	Failures   []Failure
	Deleted    int
	Compressed int
	Skipped    int
	Freed      int64 // bytes no longer occupied on disk
}

// Executor applies delete/compress actions to classified items, one at a time.
type Executor struct {
	Fs      afero.Fs
	Checker archive.Checker
	Sink    progress.Sink
}

func New(fs afero.Fs, checker archive.Checker, sink progress.Sink) *Executor {
	if checker == nil {
		checker = archive.NewZipChecker(fs)
	}
	if sink == nil {
		sink = progress.Discard
	}
	return &Executor{Fs: fs, Checker: checker, Sink: sink}
}

// Run processes the selected duplicates first, then the selected orphans.
// Cancellation is checked before every item; finished items stay finished.
// A failing item is reported and the run moves on.
func (e *Executor) Run(ctx context.Context, items []scanner.FileItem, opts Options) Outcome {
	var queue []scanner.FileItem
	for _, it := range items {
		if it.Kind == scanner.Duplicate && opts.DeleteDuplicates {
			queue = append(queue, it)
		}
	}
	for _, it := range items {
		if it.Kind == scanner.Orphan && opts.CompressOrphans {
			queue = append(queue, it)
		}
	}
	out := Outcome{Status: scanner.Completed, Skipped: len(items) - len(queue)}

	total := len(queue)
	for i, it := range queue {
		if ctx.Err() != nil {
			out.Status = scanner.Cancelled
			return out
		}
		switch it.Kind {
		case scanner.Duplicate:
			err := deleter.Delete(e.Fs, deleter.Target{Path: it.Path, Size: it.Size}, opts.DryRun, e.Sink)
			if err != nil {
				out.Failures = append(out.Failures, Failure{Item: it, Err: err})
			} else if !opts.DryRun {
				out.Deleted++
				out.Freed += it.Size
				out.Consumed = append(out.Consumed, it)
			}
		case scanner.Orphan:
			succ, err := compressor.Compress(e.Fs, e.Checker, compressor.Target{Path: it.Path, Size: it.Size}, opts.DryRun, e.Sink)
			if err != nil {
				out.Failures = append(out.Failures, Failure{Item: it, Err: err})
			} else if !opts.DryRun {
				out.Compressed++
				if saved := it.Size - succ.Size; saved > 0 {
					out.Freed += saved
				}
				out.Consumed = append(out.Consumed, it)
			}
		}
		done := i + 1
		pct := done * 100 / total
		e.Sink.Ratio(pct, fmt.Sprintf("Processing: %d/%d items (%d%%)", done, total, pct))
	}
	return out
}
