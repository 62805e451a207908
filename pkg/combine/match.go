// File: pkg/combine/match.go
package combine

import (
	"path/filepath"
	"strings"
)

// IsChildOf reports whether child is parent itself or lies beneath it.
// Both are slash-separated relative paths; a trailing slash on parent is
// ignored. Matching is by whole path segment, so "srcfoo/a" is not a child
// of "src".
func IsChildOf(child, parent string) bool {
	parent = strings.TrimRight(parent, "/")
	if !strings.HasPrefix(child, parent) {
		return false
	}
	return len(child) == len(parent) || child[len(parent)] == '/'
}

// anyChildOf reports whether path is inside any of the given prefixes.
func anyChildOf(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if IsChildOf(path, prefix) {
			return true
		}
	}
	return false
}

// normalizePath converts OS-specific path separators to forward slashes.
func normalizePath(path string) string {
	return filepath.ToSlash(path)
}
