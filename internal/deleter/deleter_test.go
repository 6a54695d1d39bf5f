package deleter

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
)

type lines []string

func (l *lines) Logf(format string, args ...any)  { *l = append(*l, fmt.Sprintf(format, args...)) }
func (l *lines) Warnf(format string, args ...any) { l.Logf(format, args...) }
func (l *lines) Ratio(int, string)                {}

func TestDelete_DryRunDoesNotDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/roms/a.txt", []byte("abc"), 0o644)

	var out lines
	if err := Delete(fs, Target{Path: "/roms/a.txt", Size: 3}, true, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/roms/a.txt"); !ok {
		t.Fatalf("file should still exist in dry-run")
	}
	if len(out) != 1 || out[0] != "[DRY RUN] Would delete: /roms/a.txt" {
		t.Fatalf("unexpected log: %v", out)
	}
}

func TestDelete_RemovesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/roms/a.txt", []byte("abc"), 0o644)

	var out lines
	if err := Delete(fs, Target{Path: "/roms/a.txt", Size: 3}, false, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/roms/a.txt"); ok {
		t.Fatalf("file should be gone")
	}
	if len(out) != 1 || out[0] != "[DELETED] /roms/a.txt" {
		t.Fatalf("unexpected log: %v", out)
	}
}

func TestDelete_MissingFileReportsError(t *testing.T) {
	fs := afero.NewMemMapFs()
	var out lines
	if err := Delete(fs, Target{Path: "/gone.txt"}, false, &out); err == nil {
		t.Fatalf("expected an error")
	}
	if len(out) != 1 || len(out[0]) < 7 || out[0][:7] != "[ERROR]" {
		t.Fatalf("expected an error line, got %v", out)
	}
}

func TestDelete_RefusesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/roms/sub", 0o755)
	if err := Delete(fs, Target{Path: "/roms/sub"}, false, nil); err == nil {
		t.Fatalf("expected an error for a directory")
	}
	if ok, _ := afero.DirExists(fs, "/roms/sub"); !ok {
		t.Fatalf("directory must survive")
	}
}
