// Package git provides the Git operations used by mcp-tools commands.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo represents a Git repository.
type Repo struct {
	dir string
}

// Open opens the Git repository at the given directory.
func Open(dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	// Verify it's a git repo
	if _, err := r.run(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}
	return r, nil
}

// OpenCurrent opens the Git repository for the current working directory.
func OpenCurrent() (*Repo, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return nil, fmt.Errorf("not in a git repository")
	}
	return Open(strings.TrimSpace(string(out)))
}

// DiffOptions selects what Diff compares.
type DiffOptions struct {
	Staged    bool
	FilePaths []string
}

// Diff returns the diff output for the repository.
func (r *Repo) Diff(ctx context.Context, opts DiffOptions) (string, error) {
	args := []string{"diff"}
	if opts.Staged {
		args = append(args, "--cached")
	}
	args = append(args, "--")
	args = append(args, opts.FilePaths...)
	return r.run(ctx, args...)
}

// StagedDiff returns the diff of staged changes.
func (r *Repo) StagedDiff(ctx context.Context) (string, error) {
	return r.Diff(ctx, DiffOptions{Staged: true})
}

// WorkingDiff returns the diff of unstaged changes.
func (r *Repo) WorkingDiff(ctx context.Context) (string, error) {
	return r.Diff(ctx, DiffOptions{Staged: false})
}

// ChangedDiff returns the staged diff, or the working tree diff when nothing
// is staged.
func (r *Repo) ChangedDiff(ctx context.Context) (string, error) {
	diff, err := r.StagedDiff(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) != "" {
		return diff, nil
	}
	return r.WorkingDiff(ctx)
}

// ShowFile returns the content of path at rev. The path is relative to the
// repository root.
func (r *Repo) ShowFile(ctx context.Context, rev, path string) (string, error) {
	return r.run(ctx, "show", rev+":"+path)
}

// RelPath returns path relative to the repository root, using forward slashes.
func (r *Repo) RelPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(r.dir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the repository", path)
	}
	return filepath.ToSlash(rel), nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s %w", strings.Join(args, " "), stderr.String(), err)
	}
	return stdout.String(), nil
}
