package scanner

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func writeFileOfSize(t *testing.T, fs afero.Fs, path string, size int) {
	t.Helper()
	if err := afero.WriteFile(fs, path, bytes.Repeat([]byte{'r'}, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeZip stores entries name -> uncompressed size.
func writeZip(t *testing.T, fs afero.Fs, path string, entries map[string]int) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, size := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		w.Write(bytes.Repeat([]byte{'r'}, size))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	lines  []string
	ratios []int
}

func (r *recordingSink) Logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *recordingSink) Warnf(format string, args ...any) { r.Logf(format, args...) }

func (r *recordingSink) Ratio(pct int, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratios = append(r.ratios, pct)
}

func (r *recordingSink) contains(line string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l == line {
			return true
		}
	}
	return false
}
