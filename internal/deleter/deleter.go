package deleter

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"zipsweep/internal/progress"
)

// Target is a file already captured by a sibling archive.
type Target struct {
	Path string
	Size int64
}

// Delete removes t.Path, or only reports it when dryRun is set. The outcome
// is always reported to sink; the returned error is for the caller's tally.
func Delete(fs afero.Fs, t Target, dryRun bool, sink progress.Sink) error {
	if sink == nil {
		sink = progress.Discard
	}
	if dryRun {
		sink.Logf("[DRY RUN] Would delete: %s", t.Path)
		return nil
	}
	info, err := fs.Stat(t.Path)
	if err == nil && info.IsDir() {
		err = errors.New("is a directory")
	}
	if err == nil {
		err = fs.Remove(t.Path)
	}
	if err != nil {
		sink.Warnf("[ERROR] Failed to delete %s: %v", t.Path, err)
		return fmt.Errorf("delete %s: %w", t.Path, err)
	}
	sink.Logf("[DELETED] %s", t.Path)
	return nil
}
