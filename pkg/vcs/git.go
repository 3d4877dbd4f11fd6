package vcs

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// CommandError is returned when a git invocation exits non-zero. Output
// holds the combined stdout and stderr for diagnostics.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("executing git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// GitCLI shells out to the git binary.
type GitCLI struct {
	dir    string
	binary string
	author Author
	log    *zap.Logger
}

func NewGitCLI(dir string, author Author, log *zap.Logger) *GitCLI {
	return &GitCLI{
		dir:    dir,
		binary: "git",
		author: author,
		log:    log.Named("git"),
	}
}

func (g *GitCLI) Exists(ctx context.Context) bool {
	_, err := g.run(ctx, "status")
	return err == nil
}

func (g *GitCLI) ListTags(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "tag")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	var tags []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if tag := strings.TrimSpace(sc.Text()); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, sc.Err()
}

// IsClean compares the index and tracked files against HEAD. Untracked
// files do not count, and a repository without commits is never clean.
func (g *GitCLI) IsClean(ctx context.Context) bool {
	_, err := g.run(ctx, "diff-index", "--quiet", "HEAD", "--")
	return err == nil
}

// StageAll stages the whole worktree, even when dir is a subdirectory of
// it.
func (g *GitCLI) StageAll(ctx context.Context) error {
	if _, err := g.run(ctx, "add", "--all"); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}
	return nil
}

func (g *GitCLI) CommitAll(ctx context.Context, message string) error {
	if _, err := g.run(ctx, "commit", "-a", "-m", message); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (g *GitCLI) CreateTag(ctx context.Context, name, message string) error {
	args := []string{"tag", name}
	if message != "" {
		args = []string{"tag", "-a", name, "-m", message}
	}
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}

// identityArgs injects the configured author as per-invocation config.
func (g *GitCLI) identityArgs() []string {
	var args []string
	if g.author.Name != "" {
		args = append(args, "-c", "user.name="+g.author.Name)
	}
	if g.author.Email != "" {
		args = append(args, "-c", "user.email="+g.author.Email)
	}
	return args
}

// run executes git in the client's directory and returns combined
// stdout+stderr output.
func (g *GitCLI) run(ctx context.Context, arg ...string) (string, error) {
	args := append(g.identityArgs(), arg...)

	g.log.Debug("executing",
		zap.String("cmd", g.binary),
		zap.String("args", strings.Join(arg, " ")),
		zap.String("dir", g.dir),
	)

	//nolint:gosec // args are built from constants and validated versions
	cmd := exec.CommandContext(ctx, g.binary, args...)
	if g.dir != "" {
		cmd.Dir = g.dir
	}

	by, err := cmd.CombinedOutput()
	out := string(by)

	g.log.Debug("output", zap.String("result", out))

	if err != nil {
		return out, &CommandError{Args: arg, Output: out, Err: err}
	}
	return out, nil
}
