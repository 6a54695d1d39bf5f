package compressor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"zipsweep/internal/archive"
	"zipsweep/internal/progress"
)

// ErrVerificationFailed means the new archive did not confirm the source.
var ErrVerificationFailed = errors.New("compression verification failed")

// Target is an orphan to be archived. Size is the size recorded at scan time.
type Target struct {
	Path string
	Size int64
}

type Success struct {
	Path string
	Dest string
	Size int64 // archive size in bytes
}

// ArchivePath is where the archive for src goes: <dir>/<basename>.zip.
func ArchivePath(src string) string {
	base := filepath.Base(src)
	return filepath.Join(filepath.Dir(src), strings.TrimSuffix(base, filepath.Ext(base))+archive.Ext)
}

// Compress archives t beside itself, verifies the archive against the
// recorded size and only then deletes the source. A failed verification
// removes the archive and leaves the source alone.
func Compress(fs afero.Fs, checker archive.Checker, t Target, dryRun bool, sink progress.Sink) (Success, error) {
	if sink == nil {
		sink = progress.Discard
	}
	if dryRun {
		sink.Logf("[DRY RUN] Would compress: %s", t.Path)
		return Success{Path: t.Path}, nil
	}

	dest := ArchivePath(t.Path)
	written, err := archive.CreateSingle(fs, t.Path, dest)
	if err != nil {
		sink.Warnf("[ERROR] Failed to compress %s: %v", t.Path, err)
		return Success{}, fmt.Errorf("compress %s: %w", t.Path, err)
	}

	if !checker.Contains(dest, filepath.Base(t.Path), t.Size) {
		if rmErr := fs.Remove(dest); rmErr != nil {
			sink.Warnf("[ERROR] Failed to remove unverified archive %s: %v", dest, rmErr)
		}
		sink.Warnf("[ERROR] Compression verification failed: %s", t.Path)
		return Success{}, fmt.Errorf("%s: %w", t.Path, ErrVerificationFailed)
	}

	if err := fs.Remove(t.Path); err != nil {
		sink.Warnf("[ERROR] Compressed %s but failed to delete it: %v", t.Path, err)
		return Success{}, fmt.Errorf("delete after compress %s: %w", t.Path, err)
	}
	sink.Logf("[COMPRESSED] %s -> %s", t.Path, filepath.Base(dest))
	return Success{Path: t.Path, Dest: dest, Size: written}, nil
}
