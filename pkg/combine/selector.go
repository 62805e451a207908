// File: pkg/combine/selector.go
package combine

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"
)

// Verdict is the outcome of running a filesystem entry through the Selector.
type Verdict int

const (
	Keep Verdict = iota
	SkipNotRegular
	SkipExcluded
	SkipNotIncluded
	SkipGlob
	SkipIgnored
	SkipOutputFile
	SkipModified
	SkipBinary
)

var verdictNames = map[Verdict]string{
	Keep:            "keep",
	SkipNotRegular:  "not a regular file",
	SkipExcluded:    "excluded path",
	SkipNotIncluded: "not included",
	SkipGlob:        "excluded pattern",
	SkipIgnored:     "ignored by git",
	SkipOutputFile:  "output file",
	SkipModified:    "modified during run",
	SkipBinary:      "binary",
}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// Selector decides which files under Root are emitted.
type Selector struct {
	Root       string        // Canonical repository root; walked paths under it are canonical too.
	Filters    *FilterSet    // Path filters.
	Ignore     IgnoreChecker // Version-control ignore predicate.
	OutputPath string        // Canonical path of the output file; empty when writing to stdout.
	StartTime  time.Time     // Files modified at or after this instant are skipped.
}

// Select runs every stage for the entry at path and returns the verdict and
// the entry's slash-separated path relative to Root.
func (s *Selector) Select(path string, d fs.DirEntry) (Verdict, string, error) {
	verdict, rel, err := s.Screen(path, d)
	if err != nil || verdict != Keep {
		return verdict, rel, err
	}
	verdict, err = s.Sniff(path)
	return verdict, rel, err
}

// Screen runs the stages that do not read file content. Path checks come
// first, then the ignore lookup, then filesystem metadata.
func (s *Selector) Screen(path string, d fs.DirEntry) (Verdict, string, error) {
	if !d.Type().IsRegular() {
		return SkipNotRegular, "", nil
	}

	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return Keep, "", fmt.Errorf("failed to compute relative path for %s: %w", path, err)
	}
	rel = normalizePath(rel)

	if s.Filters.Excluded(rel) {
		return SkipExcluded, rel, nil
	}
	if !s.Filters.Included(rel) {
		return SkipNotIncluded, rel, nil
	}
	if s.Filters.ExcludeGlobs.Match(rel) {
		return SkipGlob, rel, nil
	}

	ignored, err := s.Ignore.IsIgnored(rel)
	if err != nil {
		return Keep, rel, fmt.Errorf("failed to check if path should be ignored: %s: %w", rel, err)
	}
	if ignored {
		return SkipIgnored, rel, nil
	}

	if s.OutputPath != "" && filepath.Clean(path) == s.OutputPath {
		return SkipOutputFile, rel, nil
	}

	info, err := d.Info()
	if err != nil {
		return Keep, rel, fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	if !info.ModTime().Before(s.StartTime) {
		return SkipModified, rel, nil
	}

	return Keep, rel, nil
}

// Sniff runs the binary check.
func (s *Selector) Sniff(path string) (Verdict, error) {
	binary, err := IsBinary(path)
	if err != nil {
		return Keep, fmt.Errorf("failed to check if %s is binary: %w", path, err)
	}
	if binary {
		return SkipBinary, nil
	}
	return Keep, nil
}

// canonicalPath makes path absolute and resolves symlinks where possible so
// two spellings of the same file compare equal.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
