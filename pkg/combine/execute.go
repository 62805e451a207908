// File: pkg/combine/execute.go
package combine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gprepo/pkg/gitrepo"

	"go.uber.org/zap"
)

// Run combines the repository described by opts into a single framed
// stream written to opts.Output, or to stdout when no output is set.
// A failure to close the output file is returned like any write error.
func Run(opts Options, logger *zap.Logger) (err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := time.Now()

	root, err := gitrepo.Discover(opts.RepoPath)
	if err != nil {
		return err
	}
	logger.Debug("Discovered repository", zap.String("root", root))

	configPath, err := findConfig(opts.ConfigPath, root)
	if err != nil {
		return err
	}
	if configPath != "" {
		cfg, err := LoadFileConfig(configPath)
		if err != nil {
			return err
		}
		opts = opts.Merge(cfg)
		logger.Debug("Loaded config file", zap.String("file", configPath))
	}

	extraGlobs, err := LoadIgnoreFile(filepath.Join(root, IgnoreFileName), logger)
	if err != nil {
		return err
	}
	filters, err := NewFilterSet(opts.Excludes, opts.Includes, extraGlobs)
	if err != nil {
		return err
	}
	logger.Debug("Built filters",
		zap.Strings("excludePrefixes", filters.ExcludePrefixes),
		zap.Strings("includePrefixes", filters.IncludePrefixes),
		zap.Int("excludeGlobs", filters.ExcludeGlobs.Len()))

	preamble := DefaultInstruction
	if opts.Preamble != "" {
		content, err := os.ReadFile(opts.Preamble)
		if err != nil {
			return fmt.Errorf("failed to read preamble: %w", err)
		}
		preamble = string(content)
	}

	checker, err := gitrepo.NewIgnoreChecker(root, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := checker.Close(); err != nil {
			logger.Warn("Failed to stop ignore checker", zap.Error(err))
		}
	}()

	out, outputPath, err := openOutput(opts.Output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			logger.Error("Failed to close output", zap.String("file", opts.Output), zap.Error(closeErr))
			if err == nil {
				err = fmt.Errorf("failed to close output file: %w", closeErr)
			}
		}
	}()

	emitter := &Emitter{
		Selector: &Selector{
			Root:       root,
			Filters:    filters,
			Ignore:     checker,
			OutputPath: outputPath,
			StartTime:  startTime,
		},
		Workers: opts.Workers,
		Logger:  logger,
	}

	emitted, err := WriteCombined(out, preamble, emitter)
	if err != nil {
		return err
	}

	if opts.Tree != "" {
		if err := writeToFile(opts.Tree, []byte(GenerateTree(emitted)), 0o644, logger); err != nil {
			return fmt.Errorf("failed to write tree structure: %w", err)
		}
	}

	logger.Info("Combined repository",
		zap.String("root", root),
		zap.Int("totalFiles", len(emitted)),
		zap.Duration("elapsed", time.Since(startTime)))
	return nil
}

// WriteCombined writes the preamble, every frame produced by emitter and
// the end marker to w through a single buffer.
func WriteCombined(w io.Writer, preamble string, emitter *Emitter) ([]string, error) {
	writer := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(writer, preamble); err != nil {
		return nil, fmt.Errorf("failed to write preamble: %w", err)
	}

	emitted, err := emitter.Emit(writer)
	if err != nil {
		return emitted, err
	}

	if _, err := fmt.Fprintln(writer, EndMarker); err != nil {
		return emitted, fmt.Errorf("failed to write end marker: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return emitted, fmt.Errorf("failed to flush output: %w", err)
	}
	return emitted, nil
}

// nopCloser keeps Run from closing stdout.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// createFile opens the output file; replaced in tests.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// openOutput returns the sink for the combined stream and the canonical
// path of the output file, or "" for stdout. The file is created before
// traversal so its canonical path can be resolved.
func openOutput(output string) (io.WriteCloser, string, error) {
	if output == "" {
		return nopCloser{os.Stdout}, "", nil
	}

	if err := ensureDirectory(filepath.Dir(output)); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := createFile(output)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create output file: %w", err)
	}
	return file, canonicalPath(output), nil
}

// ensureDirectory ensures a directory exists, creating it if necessary.
func ensureDirectory(path string) error {
	return os.MkdirAll(path, os.ModePerm)
}

// writeToFile writes data to a file and logs the operation.
func writeToFile(path string, data []byte, perm os.FileMode, logger *zap.Logger) error {
	if err := ensureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		logger.Error("Failed to write file", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Successfully wrote file", zap.String("path", path))
	return nil
}
