package scanner

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/spf13/afero"

	"zipsweep/internal/progress"
)

// Walker enumerates directories breadth-first.
type Walker struct {
	Fs         afero.Fs
	Sink       progress.Sink
	SkipHidden bool // skip hidden/system directories below the root
}

// Walk yields every directory discovered below root in BFS level order. The
// root itself is not yielded; callers treat it as directory zero. Hidden or
// system directories below the root are neither yielded nor descended into;
// the root is never checked. Unreadable directories are reported to the sink
// and skipped. Cancellation is checked before each directory is dequeued.
func (w *Walker) Walk(ctx context.Context, root string) iter.Seq[string] {
	sink := w.Sink
	if sink == nil {
		sink = progress.Discard
	}
	return func(yield func(string) bool) {
		queue := []string{root}
		for len(queue) > 0 {
			if ctx.Err() != nil {
				return
			}
			cur := queue[0]
			queue = queue[1:]

			entries, err := afero.ReadDir(w.Fs, cur)
			if err != nil {
				if errors.Is(err, fs.ErrPermission) {
					sink.Warnf("Access denied (skipping): %s", displayDir(cur))
				} else {
					sink.Warnf("Error accessing %s: %v", displayDir(cur), err)
				}
				continue
			}
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				if w.SkipHidden && isProtected(e) {
					sink.Logf("Skipping protected directory: %s", e.Name())
					continue
				}
				sub := filepath.Join(cur, e.Name())
				if !yield(sub) {
					return
				}
				queue = append(queue, sub)
			}
		}
	}
}

func displayDir(p string) string {
	base := filepath.Base(p)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return p
	}
	return base
}
