package gitrepo

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// IgnoreChecker keeps one `git check-ignore --stdin` process alive and
// queries it a path at a time. It is not safe for concurrent use.
type IgnoreChecker struct {
	root   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr bytes.Buffer
	logger *zap.Logger
	closed bool
}

// NewIgnoreChecker starts the checker for the working tree at root.
// Rules come from .gitignore files, .git/info/exclude and core.excludesFile;
// the index is not consulted, so a tracked file matching a rule still
// reports as ignored.
func NewIgnoreChecker(root string, logger *zap.Logger) (*IgnoreChecker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &IgnoreChecker{root: root, logger: logger}
	c.cmd = exec.Command("git", "-C", root, "check-ignore",
		"--stdin", "-z", "--verbose", "--non-matching", "--no-index")
	c.cmd.Env = append(os.Environ(), "GIT_FLUSH=1")
	c.cmd.Stderr = &c.stderr

	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open git check-ignore stdin: %w", err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open git check-ignore stdout: %w", err)
	}
	if err := c.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start git check-ignore: %w", err)
	}

	c.stdin = stdin
	c.stdout = bufio.NewReader(stdout)
	logger.Debug("Started git check-ignore", zap.String("root", root), zap.Int("pid", c.cmd.Process.Pid))
	return c, nil
}

// IsIgnored reports whether git's ignore rules exclude relPath, a
// slash-separated path relative to the root. Any path with a .git segment,
// including metadata of nested repositories and submodules, is ignored.
func (c *IgnoreChecker) IsIgnored(relPath string) (bool, error) {
	if isGitMetadata(relPath) {
		return true, nil
	}
	if c.closed {
		return false, fmt.Errorf("ignore checker for %s is closed", c.root)
	}

	if _, err := io.WriteString(c.stdin, relPath+"\x00"); err != nil {
		return false, c.failure(fmt.Errorf("failed to send path to git check-ignore: %w", err))
	}

	// Each answer is four NUL-terminated fields: source, line number,
	// pattern and path. Source is empty when no rule matched.
	var fields [4]string
	for i := range fields {
		field, err := c.stdout.ReadString(0)
		if err != nil {
			return false, c.failure(fmt.Errorf("failed to read git check-ignore output: %w", err))
		}
		fields[i] = strings.TrimSuffix(field, "\x00")
	}

	source, pattern := fields[0], fields[2]
	if fields[3] != relPath {
		return false, fmt.Errorf("git check-ignore answered for %q while checking %q", fields[3], relPath)
	}
	if source == "" {
		return false, nil
	}

	ignored := !strings.HasPrefix(pattern, "!")
	c.logger.Debug("Matched git ignore rule",
		zap.String("path", relPath),
		zap.String("source", source),
		zap.String("lineNo", fields[1]),
		zap.String("pattern", pattern),
		zap.Bool("ignored", ignored))
	return ignored, nil
}

// isGitMetadata reports whether any segment of relPath is ".git".
func isGitMetadata(relPath string) bool {
	return relPath == ".git" ||
		strings.HasPrefix(relPath, ".git/") ||
		strings.HasSuffix(relPath, "/.git") ||
		strings.Contains(relPath, "/.git/")
}

// failure reaps the git process after an I/O error and folds its stderr
// into the returned error.
func (c *IgnoreChecker) failure(err error) error {
	c.closed = true
	_ = c.stdin.Close()
	_ = c.cmd.Wait()
	if msg := strings.TrimSpace(c.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

// Close stops the git process.
func (c *IgnoreChecker) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.stdin.Close(); err != nil {
		return err
	}
	if err := c.cmd.Wait(); err != nil {
		// check-ignore exits 1 when the last batch matched nothing.
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil
		}
		return fmt.Errorf("git check-ignore: %w: %s", err, strings.TrimSpace(c.stderr.String()))
	}
	return nil
}
