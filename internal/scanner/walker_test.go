package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/spf13/afero"
)

func mkdirs(t *testing.T, fs afero.Fs, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

func TestWalk_BreadthFirstOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkdirs(t, fs, "/r/a/a1/deep", "/r/a/a2", "/r/b/b1", "/r/c")
	writeFileOfSize(t, fs, "/r/file.rom", 1)

	w := &Walker{Fs: fs, SkipHidden: true}
	got := slices.Collect(w.Walk(context.Background(), "/r"))
	want := []string{"/r/a", "/r/b", "/r/c", "/r/a/a1", "/r/a/a2", "/r/b/b1", "/r/a/a1/deep"}
	if !slices.Equal(got, want) {
		t.Fatalf("walk order = %v; want %v", got, want)
	}
}

func TestWalk_SkipsHiddenButNotRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hidden directories are attribute based on windows")
	}
	fs := afero.NewOsFs()
	root := filepath.Join(t.TempDir(), ".hidden-root")
	mkdirs(t, fs,
		filepath.Join(root, "visible", "inner"),
		filepath.Join(root, ".git", "objects"),
	)

	sink := &recordingSink{}
	w := &Walker{Fs: fs, Sink: sink, SkipHidden: true}
	got := slices.Collect(w.Walk(context.Background(), root))

	want := []string{
		filepath.Join(root, "visible"),
		filepath.Join(root, "visible", "inner"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("walk = %v; want %v", got, want)
	}
	if !sink.contains("Skipping protected directory: .git") {
		t.Fatalf("expected skip log line, got %v", sink.lines)
	}
}

func TestWalk_IncludeHidden(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkdirs(t, fs, "/r/.cache/x")
	w := &Walker{Fs: fs, SkipHidden: false}
	got := slices.Collect(w.Walk(context.Background(), "/r"))
	if !slices.Equal(got, []string{"/r/.cache", "/r/.cache/x"}) {
		t.Fatalf("unexpected walk: %v", got)
	}
}

func TestWalk_AccessDeniedIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	fs := afero.NewOsFs()
	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	mkdirs(t, fs, filepath.Join(locked, "child"), filepath.Join(root, "open", "child"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	sink := &recordingSink{}
	w := &Walker{Fs: fs, Sink: sink, SkipHidden: true}
	got := slices.Collect(w.Walk(context.Background(), root))
	want := []string{locked, filepath.Join(root, "open"), filepath.Join(root, "open", "child")}
	if !slices.Equal(got, want) {
		t.Fatalf("walk = %v; want %v", got, want)
	}
	if !sink.contains("Access denied (skipping): locked") {
		t.Fatalf("expected access denied line, got %v", sink.lines)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkdirs(t, fs, "/r/a/x", "/r/b/y")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &Walker{Fs: fs}
	if got := slices.Collect(w.Walk(ctx, "/r")); len(got) != 0 {
		t.Fatalf("expected nothing from a cancelled walk, got %v", got)
	}
}

func TestWalk_StopsWhenConsumerStops(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkdirs(t, fs, "/r/a", "/r/b", "/r/c")
	w := &Walker{Fs: fs}
	var seen []string
	for d := range w.Walk(context.Background(), "/r") {
		seen = append(seen, d)
		if len(seen) == 2 {
			break
		}
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 directories, got %v", seen)
	}
}
