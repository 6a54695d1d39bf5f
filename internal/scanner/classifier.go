package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"zipsweep/internal/archive"
	"zipsweep/internal/progress"
)

// Classifier splits one directory's files into duplicates and orphans.
type Classifier struct {
	Fs      afero.Fs
	Checker archive.Checker
	Sink    progress.Sink
}

// Classify lists the regular files directly inside dir and classifies them.
// Only a read error on dir itself is returned; everything else is best-effort.
//
// A file whose basename has a sibling archive that does not contain it (by
// name and size) is neither a duplicate nor an orphan. That gap is intended.
func (c *Classifier) Classify(dir string) ([]FileItem, error) {
	sink := c.Sink
	if sink == nil {
		sink = progress.Discard
	}
	entries, err := afero.ReadDir(c.Fs, dir)
	if err != nil {
		return nil, err
	}
	files := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.Mode().IsRegular() {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		return nil, nil
	}

	// group by basename, keeping enumeration order
	var order []string
	groups := make(map[string][]os.FileInfo)
	hasArchive := make(map[string]bool)
	for _, f := range files {
		base := basename(f.Name())
		if _, ok := groups[base]; !ok {
			order = append(order, base)
		}
		groups[base] = append(groups[base], f)
		if archive.IsArchiveName(f.Name()) {
			hasArchive[base] = true
		}
	}

	var out []FileItem
	for _, base := range order {
		members := groups[base]
		if len(members) < 2 {
			continue
		}
		var zipInfo os.FileInfo
		for _, m := range members {
			if archive.IsArchiveName(m.Name()) {
				zipInfo = m
				break
			}
		}
		if zipInfo == nil {
			continue
		}
		zipPath := filepath.Join(dir, zipInfo.Name())
		for _, m := range members {
			if archive.IsArchiveName(m.Name()) {
				continue
			}
			if c.Checker.Contains(zipPath, m.Name(), m.Size()) {
				out = append(out, newItem(dir, m, Duplicate, zipPath))
				sink.Logf("Duplicate found: %s", m.Name())
			}
		}
	}

	for _, f := range files {
		if archive.IsArchiveName(f.Name()) {
			continue
		}
		if !hasArchive[basename(f.Name())] {
			out = append(out, newItem(dir, f, Orphan, ""))
			sink.Logf("Orphan found: %s", f.Name())
		}
	}
	return out, nil
}

func basename(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func newItem(dir string, f os.FileInfo, kind Kind, archivePath string) FileItem {
	return FileItem{
		Path:        filepath.Join(dir, f.Name()),
		DisplayName: fmt.Sprintf("%s (%s) - %s", f.Name(), humanize.IBytes(uint64(f.Size())), dir),
		Size:        f.Size(),
		Kind:        kind,
		ArchivePath: archivePath,
	}
}
