// File: pkg/combine/config.go
package combine

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up at the repository root when no config path is given.
const ConfigFileName = ".gprepo.yaml"

// ConfigEnvVar names a config file when --config is not set.
const ConfigEnvVar = "GPREPO_CONFIG"

// Options holds the settings for one run.
type Options struct {
	RepoPath   string   // Directory to discover the repository from; empty means the working directory.
	Output     string   // Output file; empty means stdout.
	Preamble   string   // File whose content replaces the default instruction line.
	ConfigPath string   // Optional YAML config file.
	Tree       string   // Optional file receiving a tree of emitted paths.
	Excludes   []string // Exclude prefixes, also used as globs.
	Includes   []string // Include prefixes.
	Workers    int      // Files read concurrently; <= 1 is sequential.
}

// FileConfig is the on-disk YAML configuration.
type FileConfig struct {
	Exclude  []string `yaml:"exclude"`
	Include  []string `yaml:"include"`
	Preamble string   `yaml:"preamble"`
	Tree     string   `yaml:"tree"`
	Workers  int      `yaml:"workers"`
}

// LoadFileConfig parses the YAML file at path. Relative paths inside it are
// resolved against the file's directory.
func LoadFileConfig(path string) (*FileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg.Preamble = resolveAgainst(base, cfg.Preamble)
	cfg.Tree = resolveAgainst(base, cfg.Tree)
	return &cfg, nil
}

func resolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// findConfig returns the config file to load, or "" if there is none.
// An explicit path must exist; the root default is optional.
func findConfig(explicit, root string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(ConfigEnvVar)
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	candidate := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(candidate); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("config file: %w", err)
	}
	return candidate, nil
}

// Merge folds cfg into opts. Filter lists are appended; scalar settings
// from the file apply only where opts left them unset.
func (opts Options) Merge(cfg *FileConfig) Options {
	if cfg == nil {
		return opts
	}
	merged := opts
	merged.Excludes = append(append([]string{}, opts.Excludes...), cfg.Exclude...)
	merged.Includes = append(append([]string{}, opts.Includes...), cfg.Include...)
	if merged.Preamble == "" {
		merged.Preamble = cfg.Preamble
	}
	if merged.Tree == "" {
		merged.Tree = cfg.Tree
	}
	if merged.Workers <= 0 {
		merged.Workers = cfg.Workers
	}
	return merged
}
