package archive

import (
	"archive/zip"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Ext is the archive extension, compared case-insensitively.
const Ext = ".zip"

// IsArchiveName reports whether name carries the archive extension.
func IsArchiveName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext)
}

// Checker answers whether an archive already holds a given file.
type Checker interface {
	Contains(archivePath, entryName string, size int64) bool
}

// ZipChecker reads zip central directories through an afero filesystem.
type ZipChecker struct {
	Fs afero.Fs
}

func NewZipChecker(fs afero.Fs) *ZipChecker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ZipChecker{Fs: fs}
}

// Contains reports whether archivePath has an entry whose final path component
// equals entryName (case-insensitive) with an uncompressed size of exactly size.
// The first entry with a matching name decides. Any error reading the archive
// yields false.
func (c *ZipChecker) Contains(archivePath, entryName string, size int64) bool {
	f, err := c.Fs.Open(archivePath)
	if err != nil {
		return false
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil || st.IsDir() {
		return false
	}
	zr, err := zip.NewReader(f, st.Size())
	if err != nil {
		return false
	}
	for _, e := range zr.File {
		// some Windows tools store entry names with backslashes
		name := strings.ReplaceAll(e.Name, `\`, "/")
		if strings.HasSuffix(name, "/") {
			continue
		}
		if strings.EqualFold(path.Base(name), entryName) {
			return size >= 0 && e.UncompressedSize64 == uint64(size)
		}
	}
	return false
}
