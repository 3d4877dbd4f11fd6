package vcs_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// initGitRepo creates a git repository with one tracked file and an
// initial commit. Git hooks are disabled to avoid interference from
// pre-commit hooks.
func initGitRepo(tb testing.TB, dir string) {
	tb.Helper()

	initEmptyRepo(tb, dir)
	writeFile(tb, dir, "README", "hello\n")
	gitCmd(tb, dir, "add", "README")
	gitCmd(tb, dir, "commit", "-m", "initial")
}

// initEmptyRepo creates a repository without any commit.
func initEmptyRepo(tb testing.TB, dir string) {
	tb.Helper()

	cmds := [][]string{
		{"init", "-b", "main"},
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test"},
		{"config", "core.hooksPath", "/dev/null"},
		{"config", "tag.gpgSign", "false"},
		{"config", "commit.gpgSign", "false"},
	}
	for _, args := range cmds {
		gitCmd(tb, dir, args...)
	}
}

func writeFile(tb testing.TB, dir, name, content string) {
	tb.Helper()

	//nolint:gosec // test file
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)
	require.NoError(tb, err)
}

// gitCmd runs a git command in the given directory and returns its
// trimmed output.
func gitCmd(tb testing.TB, dir string, args ...string) string {
	tb.Helper()

	//nolint:gosec // test helper
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		tb.Fatalf("git %v failed: %s: %v", args, string(out), err)
	}
	return strings.TrimSpace(string(out))
}
