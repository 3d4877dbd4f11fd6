package vcs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/funkytag/pkg/vcs"
)

func TestGitCLI_Exists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initGitRepo(t, dir)

	g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))
	assert.True(t, g.Exists(context.Background()))
}

func TestGitCLI_Exists_missingDir(t *testing.T) {
	t.Parallel()

	g := vcs.NewGitCLI(t.TempDir()+"/missing", vcs.Author{}, zaptest.NewLogger(t))
	assert.False(t, g.Exists(context.Background()))
}

func TestGitCLI_ListTags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initGitRepo(t, dir)
	gitCmd(t, dir, "tag", "v1.0.0")
	gitCmd(t, dir, "tag", "foo")

	g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))
	tags, err := g.ListTags(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1.0.0", "foo"}, tags)
}

func TestGitCLI_ListTags_none(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initGitRepo(t, dir)

	g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))
	tags, err := g.ListTags(context.Background())

	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestGitCLI_IsClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(tb testing.TB, dir string)
		want  bool
	}{
		{
			name:  "fresh commit",
			setup: initGitRepo,
			want:  true,
		},
		{
			name: "modified tracked file",
			setup: func(tb testing.TB, dir string) {
				initGitRepo(tb, dir)
				writeFile(tb, dir, "README", "changed\n")
			},
			want: false,
		},
		{
			name: "staged change",
			setup: func(tb testing.TB, dir string) {
				initGitRepo(tb, dir)
				writeFile(tb, dir, "new.txt", "x\n")
				gitCmd(tb, dir, "add", "new.txt")
			},
			want: false,
		},
		{
			name: "untracked only",
			setup: func(tb testing.TB, dir string) {
				initGitRepo(tb, dir)
				writeFile(tb, dir, "scratch.txt", "x\n")
			},
			want: true,
		},
		{
			name:  "no commits",
			setup: initEmptyRepo,
			want:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			tt.setup(t, dir)

			g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))
			assert.Equal(t, tt.want, g.IsClean(context.Background()))
		})
	}
}

func TestGitCLI_StageAndCommit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initGitRepo(t, dir)
	writeFile(t, dir, "README", "changed\n")
	writeFile(t, dir, "new.txt", "new\n")

	ctx := context.Background()
	g := vcs.NewGitCLI(dir, vcs.Author{Name: "Releaser", Email: "rel@example.com"}, zaptest.NewLogger(t))

	require.NoError(t, g.StageAll(ctx))
	require.NoError(t, g.CommitAll(ctx, "1.1.0"))

	assert.Equal(t, "1.1.0", gitCmd(t, dir, "log", "-1", "--pretty=%B"))
	assert.Equal(t, "Releaser <rel@example.com>", gitCmd(t, dir, "log", "-1", "--pretty=%an <%ae>"))
	assert.True(t, g.IsClean(ctx))
	assert.Equal(t, "new.txt", gitCmd(t, dir, "ls-files", "new.txt"))
}

func TestGitCLI_CommitAll_nothingToCommit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initGitRepo(t, dir)

	g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))
	err := g.CommitAll(context.Background(), "1.0.0")

	var cmdErr *vcs.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, cmdErr.Output, "nothing")
}

func TestGitCLI_CreateTag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initGitRepo(t, dir)

	ctx := context.Background()
	g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))

	require.NoError(t, g.CreateTag(ctx, "v1.0.0", ""))
	assert.Equal(t, "commit", gitCmd(t, dir, "cat-file", "-t", "v1.0.0"))
	assert.Equal(t, gitCmd(t, dir, "rev-parse", "HEAD"), gitCmd(t, dir, "rev-list", "-n", "1", "v1.0.0"))

	err := g.CreateTag(ctx, "v1.0.0", "")
	var cmdErr *vcs.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, cmdErr.Output, "already exists")
}

func TestGitCLI_CreateTag_annotated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initGitRepo(t, dir)

	g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))
	require.NoError(t, g.CreateTag(context.Background(), "v2.0.0", "Release 2.0.0"))

	assert.Equal(t, "tag", gitCmd(t, dir, "cat-file", "-t", "v2.0.0"))
	assert.Equal(t, "Release 2.0.0", gitCmd(t, dir, "tag", "-l", "--format=%(contents:subject)", "v2.0.0"))
}

func TestGitCLI_CreateTag_noCommits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	initEmptyRepo(t, dir)

	g := vcs.NewGitCLI(dir, vcs.Author{}, zaptest.NewLogger(t))
	assert.Error(t, g.CreateTag(context.Background(), "v1.0.0", ""))
}
