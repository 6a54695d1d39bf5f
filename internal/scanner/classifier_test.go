package scanner

import (
	"archive/zip"
	"testing"

	"github.com/spf13/afero"

	"zipsweep/internal/archive"
)

func newClassifier(fs afero.Fs) (*Classifier, *recordingSink) {
	sink := &recordingSink{}
	return &Classifier{Fs: fs, Checker: archive.NewZipChecker(fs), Sink: sink}, sink
}

func byPath(items []FileItem) map[string]FileItem {
	m := make(map[string]FileItem, len(items))
	for _, it := range items {
		m[it.Path] = it
	}
	return m
}

func TestClassify_DuplicateInArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/a.txt", 42)
	writeZip(t, fs, "/d/a.zip", map[string]int{"a.txt": 42})

	c, sink := newClassifier(fs)
	items, err := c.Classify("/d")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	it := items[0]
	if it.Kind != Duplicate || it.Path != "/d/a.txt" || it.ArchivePath != "/d/a.zip" || it.Size != 42 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if !sink.contains("Duplicate found: a.txt") {
		t.Fatalf("missing duplicate log line: %v", sink.lines)
	}
}

func TestClassify_OrphanWithoutArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/b.rom", 7)

	c, _ := newClassifier(fs)
	items, err := c.Classify("/d")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(items) != 1 || items[0].Kind != Orphan || items[0].ArchivePath != "" {
		t.Fatalf("expected one orphan, got %+v", items)
	}
}

func TestClassify_MismatchedArchiveIsNeither(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/c.bin", 100)
	writeZip(t, fs, "/d/c.zip", map[string]int{"c.bin": 99})

	c, _ := newClassifier(fs)
	items, err := c.Classify("/d")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected c.bin to be neither duplicate nor orphan, got %+v", items)
	}
}

func TestClassify_CorruptArchiveIsNeither(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/c.bin", 100)
	writeFileOfSize(t, fs, "/d/c.zip", 100)

	c, _ := newClassifier(fs)
	items, err := c.Classify("/d")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("corrupt archive must yield no match and no orphan, got %+v", items)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/a.txt", 3)
	writeZip(t, fs, "/d/a.zip", map[string]int{"a.txt": 3})
	writeFileOfSize(t, fs, "/d/b.rom", 4)
	writeFileOfSize(t, fs, "/d/b.sav", 5)
	writeFileOfSize(t, fs, "/d/c.bin", 6)
	writeZip(t, fs, "/d/c.zip", map[string]int{"other": 6})

	c, _ := newClassifier(fs)
	first, err := c.Classify("/d")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	second, err := c.Classify("/d")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	a, b := byPath(first), byPath(second)
	if len(a) != len(b) || len(a) != 3 {
		t.Fatalf("expected 3 identical items, got %d and %d", len(a), len(b))
	}
	for p, it := range a {
		if b[p] != it {
			t.Fatalf("item %s differs between runs: %+v vs %+v", p, it, b[p])
		}
	}
}

func TestClassify_GroupWithoutArchiveFallsToOrphans(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/game.rom", 10)
	writeFileOfSize(t, fs, "/d/game.sav", 2)

	c, _ := newClassifier(fs)
	items, _ := c.Classify("/d")
	m := byPath(items)
	if len(m) != 2 || m["/d/game.rom"].Kind != Orphan || m["/d/game.sav"].Kind != Orphan {
		t.Fatalf("expected both files to be orphans, got %+v", items)
	}
}

func TestClassify_UppercaseArchiveExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/a.txt", 9)
	writeZip(t, fs, "/d/a.ZIP", map[string]int{"A.TXT": 9})

	c, _ := newClassifier(fs)
	items, _ := c.Classify("/d")
	if len(items) != 1 || items[0].Kind != Duplicate || items[0].ArchivePath != "/d/a.ZIP" {
		t.Fatalf("expected duplicate against a.ZIP, got %+v", items)
	}
}

func TestClassify_FirstArchiveByEnumerationOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/x.rom", 8)
	// "x.ZIP" sorts before "x.zip"; only it is consulted.
	writeZip(t, fs, "/d/x.ZIP", map[string]int{"unrelated": 1})
	writeZip(t, fs, "/d/x.zip", map[string]int{"x.rom": 8})

	c, _ := newClassifier(fs)
	items, _ := c.Classify("/d")
	if len(items) != 0 {
		t.Fatalf("expected no classification when the first archive lacks the entry, got %+v", items)
	}
}

func TestClassify_BasenameCaseSensitive(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFileOfSize(t, fs, "/d/Game.rom", 8)
	w, _ := fs.Create("/d/game.zip")
	zip.NewWriter(w).Close()
	w.Close()

	c, _ := newClassifier(fs)
	items, _ := c.Classify("/d")
	if len(items) != 1 || items[0].Kind != Orphan {
		t.Fatalf("Game.rom has no same-cased archive and should be an orphan, got %+v", items)
	}
}

func TestClassify_EmptyAndSubdirsIgnored(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/d/sub", 0o755)
	writeFileOfSize(t, fs, "/d/sub/inner.rom", 1)

	c, _ := newClassifier(fs)
	items, err := c.Classify("/d")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("classification must not recurse, got %+v", items)
	}
}

func TestClassify_MissingDirectory(t *testing.T) {
	c, _ := newClassifier(afero.NewMemMapFs())
	if _, err := c.Classify("/nope"); err == nil {
		t.Fatalf("expected an error for a missing directory")
	}
}
