package vcs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

// GoGit operates on the repository in-process through go-git, without
// requiring a git binary.
type GoGit struct {
	dir    string
	author Author
	log    *zap.Logger
}

func NewGoGit(dir string, author Author, log *zap.Logger) *GoGit {
	if dir == "" {
		dir = "."
	}
	return &GoGit{
		dir:    dir,
		author: author,
		log:    log.Named("go-git"),
	}
}

func (g *GoGit) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(g.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", g.dir, err)
	}
	return repo, nil
}

func (g *GoGit) worktree() (*git.Worktree, error) {
	repo, err := g.open()
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	return wt, nil
}

func (g *GoGit) Exists(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	repo, err := g.open()
	if err != nil {
		g.log.Debug("no repository", zap.Error(err))
		return false
	}
	// Bare repositories have nothing to commit from.
	_, err = repo.Worktree()
	return err == nil
}

func (g *GoGit) ListTags(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo, err := g.open()
	if err != nil {
		return nil, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// IsClean ignores untracked files, matching the CLI backend.
func (g *GoGit) IsClean(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	repo, err := g.open()
	if err != nil {
		return false
	}
	if _, err := repo.Head(); err != nil {
		return false
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false
	}

	status, err := wt.Status()
	if err != nil {
		g.log.Warn("failed to check repo status", zap.Error(err))
		return false
	}

	for path, fs := range status {
		if fs.Staging == git.Untracked && fs.Worktree == git.Untracked {
			continue
		}
		if fs.Staging != git.Unmodified || fs.Worktree != git.Unmodified {
			g.log.Debug("modified", zap.String("path", path))
			return false
		}
	}
	return true
}

func (g *GoGit) StageAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wt, err := g.worktree()
	if err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}
	return nil
}

func (g *GoGit) CommitAll(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wt, err := g.worktree()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		All:    true,
		Author: g.signature(),
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	g.log.Debug("committed", zap.String("hash", hash.String()))
	return nil
}

var errNoHead = errors.New("no commit to tag")

func (g *GoGit) CreateTag(ctx context.Context, name, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo, err := g.open()
	if err != nil {
		return fmt.Errorf("create tag %s: %w", name, err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("create tag %s: %w: %w", name, errNoHead, err)
	}

	var opts *git.CreateTagOptions
	if message != "" {
		opts = &git.CreateTagOptions{
			Message: message,
			Tagger:  g.signature(),
		}
	}

	if _, err := repo.CreateTag(name, head.Hash(), opts); err != nil {
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}

// signature returns nil when no author is configured so go-git falls back
// to the repository and global git config.
func (g *GoGit) signature() *object.Signature {
	if g.author.IsZero() {
		return nil
	}
	return &object.Signature{
		Name:  g.author.Name,
		Email: g.author.Email,
		When:  time.Now(),
	}
}
