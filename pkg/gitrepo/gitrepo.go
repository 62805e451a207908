// Package gitrepo locates git working trees and answers ignore-status
// queries by shelling out to the git command.
package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	// ErrRepositoryNotFound means no git repository contains the start path.
	ErrRepositoryNotFound = errors.New("could not find repository")
	// ErrNoWorkTree means the repository was found but has no working directory.
	ErrNoWorkTree = errors.New("could not find repository working directory")
)

func runGit(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Discover returns the canonical working-tree root of the repository that
// contains start. An empty start means the current working directory.
func Discover(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		start = wd
	}

	if _, err := runGit(start, "rev-parse", "--git-dir"); err != nil {
		return "", fmt.Errorf("%w from %s: %v", ErrRepositoryNotFound, start, err)
	}

	out, err := runGit(start, "rev-parse", "--is-bare-repository")
	if err != nil {
		return "", fmt.Errorf("%w from %s: %v", ErrRepositoryNotFound, start, err)
	}
	if strings.TrimSpace(string(out)) == "true" {
		return "", fmt.Errorf("%w: %s is a bare repository", ErrNoWorkTree, start)
	}

	out, err = runGit(start, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w from %s: %v", ErrNoWorkTree, start, err)
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", fmt.Errorf("%w from %s", ErrNoWorkTree, start)
	}

	root, err = filepath.Abs(filepath.FromSlash(root))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return root, nil
}
