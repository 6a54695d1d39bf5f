package scanner

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/afero"

	"zipsweep/internal/archive"
	"zipsweep/internal/progress"
)

// Options defines scanning behavior.
type Options struct {
	SkipHidden bool // skip hidden/system directories below the root
}

// Scanner drives the walker and classifier over a whole tree.
type Scanner struct {
	fs         afero.Fs
	sink       progress.Sink
	walker     *Walker
	classifier *Classifier

	// afterDir is called once per visited directory; tests use it to cancel mid-scan.
	afterDir func(visited int)
}

func New(fs afero.Fs, checker archive.Checker, sink progress.Sink, opts Options) *Scanner {
	if sink == nil {
		sink = progress.Discard
	}
	if checker == nil {
		checker = archive.NewZipChecker(fs)
	}
	return &Scanner{
		fs:         fs,
		sink:       sink,
		walker:     &Walker{Fs: fs, Sink: sink, SkipHidden: opts.SkipHidden},
		classifier: &Classifier{Fs: fs, Checker: checker, Sink: sink},
	}
}

// Scan enumerates every directory under root, classifies each one in BFS
// order and returns the accumulated items. A cancelled scan keeps the items
// collected so far. A root that cannot be read fails the scan.
func (s *Scanner) Scan(ctx context.Context, root string) Result {
	info, err := s.fs.Stat(root)
	if err != nil {
		return Result{Status: Failed, Err: fmt.Errorf("scan root: %w", err)}
	}
	if !info.IsDir() {
		return Result{Status: Failed, Err: fmt.Errorf("scan root: not a directory: %s", root)}
	}

	s.sink.Logf("Starting scan of %s...", root)
	dirs := append([]string{root}, slices.Collect(s.walker.Walk(ctx, root))...)
	if ctx.Err() != nil {
		s.sink.Logf("Scan cancelled by user")
		return Result{Status: Cancelled, TotalDirs: len(dirs)}
	}

	total := len(dirs)
	s.sink.Logf("Found %d directories to scan (including %s)", total, root)

	res := Result{Status: Completed, TotalDirs: total}
	lastPct := -1
	for _, dir := range dirs {
		if ctx.Err() != nil {
			res.Status = Cancelled
			s.sink.Logf("Scan cancelled by user")
			return res
		}

		items, err := s.classifier.Classify(dir)
		if err != nil {
			s.sink.Warnf("Error scanning %s: %v", dir, err)
		}
		res.Items = append(res.Items, items...)
		res.VisitedDirs++

		pct := res.VisitedDirs * 100 / total
		milestone := res.VisitedDirs%10 == 0 || res.VisitedDirs == total
		if pct != lastPct || milestone {
			s.sink.Ratio(pct, fmt.Sprintf("Scanning: %d/%d directories (%d%%)", res.VisitedDirs, total, pct))
			lastPct = pct
		}
		if milestone {
			s.sink.Logf("Scanned: %s (%d/%d)", dir, res.VisitedDirs, total)
		}
		if s.afterDir != nil {
			s.afterDir(res.VisitedDirs)
		}
	}

	dups, orphans := res.Split()
	s.sink.Logf("Scan complete: %d duplicates, %d orphans", len(dups), len(orphans))
	return res
}
