// File: pkg/combine/emitter.go
package combine

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// DefaultInstruction is written in place of a preamble file.
	DefaultInstruction = "Below is a repository containing files. Each file begins with @@@@<file-path>@@@@ followed by its content. The repository ends with @@@@END@@@@. After this marker, instructions related to the repository are provided."
	// EndMarker terminates the stream.
	EndMarker = "@@@@END@@@@"
)

// FileContent is a file ready to be written as a frame.
type FileContent struct {
	Path    string // Slash-separated path relative to the repository root.
	Content string // Normalized content.
}

// Frame renders the file as a start marker, its content and a blank line.
func (fc FileContent) Frame() string {
	return fmt.Sprintf("@@@@%s@@@@\n%s\n", fc.Path, fc.Content)
}

// Emitter walks the repository and writes a frame for every selected file.
type Emitter struct {
	Selector *Selector
	Workers  int
	Logger   *zap.Logger
}

// Emit writes the frames of all selected files to w in traversal order and
// returns their relative paths. It does not write the preamble or the end
// marker and does not flush w.
func (e *Emitter) Emit(w *bufio.Writer) ([]string, error) {
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	if e.Workers > 1 {
		return e.emitConcurrently(w)
	}
	return e.emitSequentially(w)
}

func (e *Emitter) emitSequentially(w *bufio.Writer) ([]string, error) {
	var emitted []string
	err := e.walk(func(path string, d fs.DirEntry) error {
		verdict, rel, err := e.Selector.Select(path, d)
		if err != nil {
			return err
		}
		if verdict != Keep {
			e.logSkip(path, rel, verdict)
			return nil
		}

		fc, err := ReadFileContent(path, rel)
		if err != nil {
			return err
		}
		if _, err := w.WriteString(fc.Frame()); err != nil {
			return fmt.Errorf("failed to write frame for %s: %w", rel, err)
		}
		emitted = append(emitted, rel)
		e.Logger.Debug("Emitted file", zap.String("path", rel), zap.Int("contentSizeBytes", len(fc.Content)))
		return nil
	})
	return emitted, err
}

// emitConcurrently screens entries during the walk, then sniffs, reads and
// normalizes the candidates on a worker pool before writing them in order.
func (e *Emitter) emitConcurrently(w *bufio.Writer) ([]string, error) {
	var candidates []candidate
	err := e.walk(func(path string, d fs.DirEntry) error {
		verdict, rel, err := e.Selector.Screen(path, d)
		if err != nil {
			return err
		}
		if verdict != Keep {
			e.logSkip(path, rel, verdict)
			return nil
		}
		candidates = append(candidates, candidate{path: path, rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	results, err := ProcessFilesConcurrently(candidates, e.Workers, e.Selector, e.Logger)
	if err != nil {
		return nil, err
	}

	var emitted []string
	for _, r := range results {
		if r.verdict != Keep {
			e.logSkip(r.path, r.content.Path, r.verdict)
			continue
		}
		if _, err := w.WriteString(r.content.Frame()); err != nil {
			return emitted, fmt.Errorf("failed to write frame for %s: %w", r.content.Path, err)
		}
		emitted = append(emitted, r.content.Path)
	}
	return emitted, nil
}

// walk visits every entry under the root depth-first in lexical order.
// Directories are always descended into; any walk error aborts.
func (e *Emitter) walk(visit func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(e.Selector.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		return visit(path, d)
	})
}

func (e *Emitter) logSkip(path, rel string, verdict Verdict) {
	e.Logger.Debug("Skipping file",
		zap.String("path", path),
		zap.String("relPath", rel),
		zap.Stringer("reason", verdict))
}

// ReadFileContent reads the file at path and normalizes it by extension.
func ReadFileContent(path, rel string) (FileContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileContent{}, fmt.Errorf("error reading file %s: %w", rel, err)
	}
	return FileContent{
		Path:    rel,
		Content: Normalize(Extension(rel), string(data)),
	}, nil
}
