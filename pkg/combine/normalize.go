// File: pkg/combine/normalize.go
package combine

import (
	"path/filepath"
	"strings"
	"unicode"
)

// WhitespaceClass selects how lines of a file are rewritten before emission.
type WhitespaceClass int

const (
	// ClassVerbatim leaves lines untouched.
	ClassVerbatim WhitespaceClass = iota
	// ClassSignificant is for formats where indentation carries meaning;
	// runs of four spaces collapse to a tab.
	ClassSignificant
	// ClassNoIndent is for formats where indentation is cosmetic;
	// leading whitespace is stripped.
	ClassNoIndent
)

// significantWhitespaceExtensions lists extensions whose indentation is syntax.
var significantWhitespaceExtensions = []string{
	"py", "nim", "hs", "yml", "yaml", "coffee", "jade", "pug", "slim", "sass", "haml",
}

// noIndentationExtensions lists extensions whose indentation can be dropped.
var noIndentationExtensions = []string{
	"rs", "js", "jsx", "ts", "tsx", "c", "cpp", "h", "hpp", "java", "go", "cs", "rb", "php",
	"swift", "kt", "kts", "scala", "groovy", "fs", "fsx", "clj", "cljs", "edn", "lisp", "el",
	"scm", "ss", "rkt", "jl", "lua", "tcl", "pl", "pm", "elm", "erl", "hrl", "v", "sv", "svh",
	"html", "css", "scss", "less", "json", "xml", "sql", "md", "toml", "ini", "conf", "cfg",
	"sh", "bash", "zsh", "ps1", "awk", "sed",
}

var extensionClasses = buildExtensionClasses()

func buildExtensionClasses() map[string]WhitespaceClass {
	classes := make(map[string]WhitespaceClass, len(significantWhitespaceExtensions)+len(noIndentationExtensions))
	for _, ext := range significantWhitespaceExtensions {
		classes[ext] = ClassSignificant
	}
	for _, ext := range noIndentationExtensions {
		classes[ext] = ClassNoIndent
	}
	return classes
}

// ClassFor returns the whitespace class of a case-sensitive extension without its dot.
func ClassFor(ext string) WhitespaceClass {
	return extensionClasses[ext]
}

// Extension returns the extension of the final path element without the
// leading dot, or "" when there is none.
func Extension(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	ext := filepath.Ext(base)
	if ext == base {
		// Dotfiles such as ".bashrc" have no extension.
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// Normalize rewrites content line by line according to the class of ext.
// Lines that end up empty are dropped; every kept line ends with "\n".
func Normalize(ext, content string) string {
	class := ClassFor(ext)

	var out strings.Builder
	out.Grow(len(content))
	for _, line := range splitLines(content) {
		switch class {
		case ClassSignificant:
			line = strings.ReplaceAll(line, "    ", "\t")
		case ClassNoIndent:
			line = strings.TrimLeftFunc(line, unicode.IsSpace)
		}
		if line == "" {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

// splitLines splits on "\n", drops a "\r" that precedes it and ignores the
// empty remainder after a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
