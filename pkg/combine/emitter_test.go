package combine

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEmitter(t *testing.T, root string, workers int, ignore IgnoreChecker) *Emitter {
	t.Helper()
	sel := newTestSelector(t, canonicalPath(root), nil, nil, ignore)
	return &Emitter{Selector: sel, Workers: workers, Logger: zaptest.NewLogger(t)}
}

func TestWriteCombinedSingleFile(t *testing.T) {
	root := t.TempDir()
	writeOldFile(t, root, "a.txt", "hello\n")

	var out bytes.Buffer
	emitted, err := WriteCombined(&out, "P", newTestEmitter(t, root, 1, nil))
	if err != nil {
		t.Fatalf("WriteCombined: %v", err)
	}

	want := "P\n@@@@a.txt@@@@\nhello\n\n@@@@END@@@@\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if len(emitted) != 1 || emitted[0] != "a.txt" {
		t.Fatalf("emitted = %v", emitted)
	}
}

func TestWriteCombinedDefaultInstruction(t *testing.T) {
	root := t.TempDir()

	var out bytes.Buffer
	if _, err := WriteCombined(&out, DefaultInstruction, newTestEmitter(t, root, 1, nil)); err != nil {
		t.Fatalf("WriteCombined: %v", err)
	}
	want := DefaultInstruction + "\n" + EndMarker + "\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func seedRepository(t *testing.T, root string) {
	t.Helper()
	writeOldFile(t, root, "z.md", "# Title\n\n   body\n")
	writeOldFile(t, root, "b/x.go", "package b\n\nfunc X() {\n\treturn\n}\n")
	writeOldFile(t, root, "b/a.py", "def a():\n    return 1\n")
	writeOldFile(t, root, "a.txt", "  keep indentation\n")
	writeOldFile(t, root, "c.bin", "\x00\x01\x02")
	writeOldFile(t, root, "LICENSE", "MIT\n")
}

const seededOutput = "P\n" +
	"@@@@a.txt@@@@\n  keep indentation\n\n" +
	"@@@@b/a.py@@@@\ndef a():\n\treturn 1\n\n" +
	"@@@@b/x.go@@@@\npackage b\nfunc X() {\nreturn\n}\n\n" +
	"@@@@z.md@@@@\n# Title\nbody\n\n" +
	"@@@@END@@@@\n"

func TestWriteCombinedOrderAndNormalization(t *testing.T) {
	root := t.TempDir()
	seedRepository(t, root)

	var out bytes.Buffer
	emitted, err := WriteCombined(&out, "P", newTestEmitter(t, root, 1, nil))
	if err != nil {
		t.Fatalf("WriteCombined: %v", err)
	}
	if out.String() != seededOutput {
		t.Fatalf("output =\n%s\nwant\n%s", out.String(), seededOutput)
	}
	if got := strings.Join(emitted, ","); got != "a.txt,b/a.py,b/x.go,z.md" {
		t.Fatalf("emitted = %s", got)
	}
}

func TestWriteCombinedWorkersPreserveOrder(t *testing.T) {
	root := t.TempDir()
	seedRepository(t, root)

	for _, workers := range []int{2, 3, 8} {
		var out bytes.Buffer
		if _, err := WriteCombined(&out, "P", newTestEmitter(t, root, workers, nil)); err != nil {
			t.Fatalf("workers=%d: WriteCombined: %v", workers, err)
		}
		if out.String() != seededOutput {
			t.Fatalf("workers=%d: output =\n%s\nwant\n%s", workers, out.String(), seededOutput)
		}
	}
}

func TestWriteCombinedAbortsOnIgnoreError(t *testing.T) {
	root := t.TempDir()
	seedRepository(t, root)

	boom := errors.New("status lookup failed")
	ignore := IgnoreFunc(func(rel string) (bool, error) {
		if rel == "b/x.go" {
			return false, boom
		}
		return false, nil
	})

	for _, workers := range []int{1, 4} {
		var out bytes.Buffer
		_, err := WriteCombined(&out, "P", newTestEmitter(t, root, workers, ignore))
		if !errors.Is(err, boom) {
			t.Fatalf("workers=%d: err = %v, want %v", workers, err, boom)
		}
		if strings.Contains(out.String(), EndMarker) {
			t.Fatalf("workers=%d: end marker written after a fatal error", workers)
		}
	}
}

func TestEmitLogsSkipReasons(t *testing.T) {
	root := t.TempDir()
	seedRepository(t, root)

	core, logs := observer.New(zap.DebugLevel)
	emitter := newTestEmitter(t, root, 1, nil)
	emitter.Logger = zap.New(core)

	var out bytes.Buffer
	if _, err := WriteCombined(&out, "P", emitter); err != nil {
		t.Fatalf("WriteCombined: %v", err)
	}

	reasons := map[string]string{}
	for _, entry := range logs.FilterMessage("Skipping file").All() {
		ctx := entry.ContextMap()
		reasons[ctx["relPath"].(string)] = ctx["reason"].(string)
	}
	if reasons["c.bin"] != SkipBinary.String() {
		t.Errorf("c.bin reason = %q", reasons["c.bin"])
	}
	if reasons["LICENSE"] != SkipGlob.String() {
		t.Errorf("LICENSE reason = %q", reasons["LICENSE"])
	}
}

func TestProcessFilesConcurrentlyReturnsReadErrors(t *testing.T) {
	root := t.TempDir()
	sel := newTestSelector(t, root, nil, nil, nil)
	candidates := []candidate{{path: filepath.Join(root, "missing.txt"), rel: "missing.txt"}}

	if _, err := ProcessFilesConcurrently(candidates, 2, sel, zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
