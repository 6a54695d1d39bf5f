package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CreateSingle writes a new archive at dest holding src as its only entry,
// named by src's base name. dest must not already exist. On any failure the
// partially written archive is removed. Returns the archive size in bytes.
func CreateSingle(fs afero.Fs, src, dest string) (int64, error) {
	info, err := fs.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", src)
	}

	f, err := fs.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}

	if err := writeEntry(fs, f, src, info); err != nil {
		_ = f.Close()
		_ = fs.Remove(dest)
		return 0, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = fs.Remove(dest)
		return 0, err
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(dest)
		return 0, err
	}
	st, err := fs.Stat(dest)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func writeEntry(fs afero.Fs, w io.Writer, src string, info os.FileInfo) error {
	zw := zip.NewWriter(w)

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(src)
	hdr.Method = zip.Deflate

	ew, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	rf, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer rf.Close()
	if _, err := io.Copy(ew, rf); err != nil {
		return err
	}
	return zw.Close()
}
