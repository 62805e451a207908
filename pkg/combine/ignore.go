// File: pkg/combine/ignore.go
package combine

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// IgnoreFileName is the optional per-repository file of extra exclude globs.
const IgnoreFileName = ".gprepoignore"

// IgnoreChecker answers whether version control ignores a path relative to
// the repository root.
type IgnoreChecker interface {
	IsIgnored(relPath string) (bool, error)
}

// IgnoreFunc adapts a plain function to IgnoreChecker.
type IgnoreFunc func(relPath string) (bool, error)

// IsIgnored calls f(relPath).
func (f IgnoreFunc) IsIgnored(relPath string) (bool, error) {
	return f(relPath)
}

// NeverIgnored is an IgnoreChecker that ignores nothing.
var NeverIgnored IgnoreChecker = IgnoreFunc(func(string) (bool, error) { return false, nil })

// LoadIgnoreFile reads glob patterns from an ignore file, one per line.
// Blank lines and lines starting with '#' are skipped; a leading "\#"
// escapes a literal '#'. A missing file yields no patterns.
func LoadIgnoreFile(filePath string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", filePath))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ignore file %s: %w", filePath, err)
	}

	lines := strings.Split(string(content), "\n")
	patterns := make([]string, 0, len(lines))
	for i, line := range lines {
		pattern, ok := parseIgnoreLine(line)
		if !ok {
			continue
		}
		patterns = append(patterns, pattern)
		logger.Debug("Loaded ignore pattern",
			zap.String("filePath", filePath),
			zap.Int("lineNo", i+1),
			zap.String("pattern", pattern))
	}

	logger.Debug("Loaded ignore file", zap.String("filePath", filePath), zap.Int("patternCount", len(patterns)))
	return patterns, nil
}

// parseIgnoreLine returns the glob on a line, or false for blanks and comments.
func parseIgnoreLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	if strings.HasPrefix(trimmed, `\#`) {
		trimmed = trimmed[1:]
	}
	return trimmed, true
}
