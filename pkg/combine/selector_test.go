package combine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// past is safely before any StartTime used in these tests.
var past = time.Now().Add(-time.Hour)

func writeOldFile(t *testing.T, root, rel string, data string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	writeFile(t, path, []byte(data))
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func dirEntry(t *testing.T, path string) fs.DirEntry {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("lstat: %v", err)
	}
	return fs.FileInfoToDirEntry(info)
}

func newTestSelector(t *testing.T, root string, excludes, includes []string, ignore IgnoreChecker) *Selector {
	t.Helper()
	filters, err := NewFilterSet(excludes, includes, nil)
	if err != nil {
		t.Fatalf("NewFilterSet: %v", err)
	}
	if ignore == nil {
		ignore = NeverIgnored
	}
	return &Selector{
		Root:      root,
		Filters:   filters,
		Ignore:    ignore,
		StartTime: time.Now(),
	}
}

func TestSelectorVerdicts(t *testing.T) {
	root := t.TempDir()
	ignoreLogs := IgnoreFunc(func(rel string) (bool, error) {
		return filepath.Ext(rel) == ".log", nil
	})
	sel := newTestSelector(t, root, []string{"*.lock", "build"}, nil, ignoreLogs)

	tests := []struct {
		rel     string
		content string
		want    Verdict
	}{
		{"build/output.txt", "x", SkipExcluded},
		{"builder/output.txt", "x", Keep},
		{"Cargo.lock", "x", SkipGlob},
		{"README.md", "x", SkipGlob},
		{"debug.log", "x", SkipIgnored},
		{"image.bin", "GIF89a\x00\x01", SkipBinary},
		{"src/lib.rs", "fn main() {}\n", Keep},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			path := writeOldFile(t, root, tt.rel, tt.content)
			got, rel, err := sel.Select(path, dirEntry(t, path))
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Select(%s) = %v, want %v", tt.rel, got, tt.want)
			}
			if rel != tt.rel {
				t.Fatalf("relative path = %q, want %q", rel, tt.rel)
			}
		})
	}
}

func TestSelectorIncludes(t *testing.T) {
	root := t.TempDir()
	sel := newTestSelector(t, root, nil, []string{"src"}, nil)

	docs := writeOldFile(t, root, "docs/readme.txt", "docs\n")
	lib := writeOldFile(t, root, "src/lib.rs", "fn lib() {}\n")

	if v, _, err := sel.Select(docs, dirEntry(t, docs)); err != nil || v != SkipNotIncluded {
		t.Fatalf("docs/readme.txt: verdict %v, err %v; want %v", v, err, SkipNotIncluded)
	}
	if v, _, err := sel.Select(lib, dirEntry(t, lib)); err != nil || v != Keep {
		t.Fatalf("src/lib.rs: verdict %v, err %v; want %v", v, err, Keep)
	}
}

func TestSelectorSkipsDirectoriesAndSymlinks(t *testing.T) {
	root := t.TempDir()
	sel := newTestSelector(t, root, nil, nil, nil)

	target := writeOldFile(t, root, "a.txt", "a\n")
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	for _, path := range []string{root, link} {
		if v, _, err := sel.Select(path, dirEntry(t, path)); err != nil || v != SkipNotRegular {
			t.Fatalf("%s: verdict %v, err %v; want %v", path, v, err, SkipNotRegular)
		}
	}
}

func TestSelectorSkipsRecentlyModifiedFiles(t *testing.T) {
	root := t.TempDir()
	sel := newTestSelector(t, root, nil, nil, nil)
	// Whole seconds survive every filesystem's timestamp precision.
	sel.StartTime = time.Now().Truncate(time.Second)

	path := writeOldFile(t, root, "fresh.txt", "fresh\n")
	if err := os.Chtimes(path, sel.StartTime, sel.StartTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if v, _, err := sel.Select(path, dirEntry(t, path)); err != nil || v != SkipModified {
		t.Fatalf("verdict %v, err %v; want %v", v, err, SkipModified)
	}

	later := sel.StartTime.Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if v, _, err := sel.Select(path, dirEntry(t, path)); err != nil || v != SkipModified {
		t.Fatalf("verdict %v, err %v; want %v", v, err, SkipModified)
	}
}

func TestSelectorSkipsOutputFile(t *testing.T) {
	root := t.TempDir()
	sel := newTestSelector(t, root, nil, nil, nil)

	out := writeOldFile(t, root, "out/combined.txt", "previous run\n")
	sel.OutputPath = canonicalPath(out)
	sel.Root = canonicalPath(root)

	path := filepath.Join(sel.Root, "out", "combined.txt")
	if v, _, err := sel.Select(path, dirEntry(t, path)); err != nil || v != SkipOutputFile {
		t.Fatalf("verdict %v, err %v; want %v", v, err, SkipOutputFile)
	}
}

func TestSelectorIgnoreErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	boom := errors.New("boom")
	sel := newTestSelector(t, root, nil, nil, IgnoreFunc(func(string) (bool, error) {
		return false, boom
	}))

	path := writeOldFile(t, root, "dir/a.txt", "a\n")
	_, _, err := sel.Select(path, dirEntry(t, path))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if want := "dir/a.txt"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not name the path %q", err, want)
	}
}

func TestSelectorChecksPathsBeforeIgnoreLookup(t *testing.T) {
	root := t.TempDir()
	sel := newTestSelector(t, root, []string{"vendor"}, nil, IgnoreFunc(func(rel string) (bool, error) {
		t.Fatalf("ignore predicate called for %s", rel)
		return false, nil
	}))

	path := writeOldFile(t, root, "vendor/lib.go", "package lib\n")
	if v, _, err := sel.Select(path, dirEntry(t, path)); err != nil || v != SkipExcluded {
		t.Fatalf("verdict %v, err %v; want %v", v, err, SkipExcluded)
	}
}

func TestVerdictString(t *testing.T) {
	if Keep.String() != "keep" || SkipBinary.String() != "binary" {
		t.Fatalf("unexpected verdict names %q %q", Keep, SkipBinary)
	}
	if Verdict(99).String() != "Verdict(99)" {
		t.Fatalf("unknown verdict rendered as %q", Verdict(99))
	}
}
