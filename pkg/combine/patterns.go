// File: pkg/combine/patterns.go
package combine

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludeGlobs are always part of the exclude glob set.
var DefaultExcludeGlobs = []string{
	"*[cC][hH][aA][nN][gG][eE][lL][oO][gG]*",
	".github*",
	".gitignore",
	"gprepo",
	".gprepoignore",
	".gprepo.yaml",
	"*LICENSE*",
	"*.lock",
	"*README*",
}

// GlobPattern is a compiled glob together with the text it came from.
type GlobPattern struct {
	Glob glob.Glob
	Line string
}

// GlobSet is an immutable set of glob patterns matched against whole
// relative paths. A '*' matches across '/' as well.
type GlobSet struct {
	patterns []GlobPattern
}

// CompileGlobSet compiles every non-empty pattern into a GlobSet.
func CompileGlobSet(patterns ...string) (*GlobSet, error) {
	gs := &GlobSet{patterns: make([]GlobPattern, 0, len(patterns))}
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		g, err := glob.Compile(line)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", line, err)
		}
		gs.patterns = append(gs.patterns, GlobPattern{Glob: g, Line: line})
	}
	return gs, nil
}

// Match reports whether path matches any pattern in the set.
func (gs *GlobSet) Match(path string) bool {
	_, ok := gs.MatchWithPattern(path)
	return ok
}

// MatchWithPattern returns the first pattern matching path.
func (gs *GlobSet) MatchWithPattern(path string) (GlobPattern, bool) {
	if gs == nil {
		return GlobPattern{}, false
	}
	path = normalizePath(path)
	for _, p := range gs.patterns {
		if p.Glob.Match(path) {
			return p, true
		}
	}
	return GlobPattern{}, false
}

// Len returns the number of compiled patterns.
func (gs *GlobSet) Len() int {
	if gs == nil {
		return 0
	}
	return len(gs.patterns)
}

// FilterSet holds the path filters applied to every file. It is built once
// per run and never mutated afterwards.
type FilterSet struct {
	ExcludePrefixes []string
	IncludePrefixes []string
	ExcludeGlobs    *GlobSet
}

// NewFilterSet builds a FilterSet. Each exclude is used both as a path
// prefix and as a glob; extraGlobs (e.g. from an ignore file) only as globs.
func NewFilterSet(excludes, includes, extraGlobs []string) (*FilterSet, error) {
	globs := make([]string, 0, len(excludes)+len(extraGlobs)+len(DefaultExcludeGlobs))
	globs = append(globs, excludes...)
	globs = append(globs, extraGlobs...)
	globs = append(globs, DefaultExcludeGlobs...)

	gs, err := CompileGlobSet(globs...)
	if err != nil {
		return nil, err
	}

	return &FilterSet{
		ExcludePrefixes: cleanPrefixes(excludes),
		IncludePrefixes: cleanPrefixes(includes),
		ExcludeGlobs:    gs,
	}, nil
}

// cleanPrefixes slash-normalizes prefixes and drops empty entries.
func cleanPrefixes(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimPrefix(normalizePath(strings.TrimSpace(p)), "./")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Excluded reports whether rel lies under any exclude prefix.
func (f *FilterSet) Excluded(rel string) bool {
	return anyChildOf(rel, f.ExcludePrefixes)
}

// Included reports whether rel passes the include prefixes. An empty
// include list admits everything.
func (f *FilterSet) Included(rel string) bool {
	if len(f.IncludePrefixes) == 0 {
		return true
	}
	return anyChildOf(rel, f.IncludePrefixes)
}
