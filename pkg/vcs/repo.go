// Package vcs talks to the version-control repository the release is cut from.
package vcs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	BackendExec  = "exec"
	BackendGoGit = "go-git"
)

// RepoClient is the set of repository operations a release needs.
type RepoClient interface {
	// Exists reports whether the directory is inside a usable repository.
	Exists(ctx context.Context) bool

	// ListTags returns every tag name, unvalidated. May be empty.
	ListTags(ctx context.Context) ([]string, error)

	// IsClean reports whether tracked files match HEAD.
	IsClean(ctx context.Context) bool

	// StageAll adds every working-tree change to the index.
	StageAll(ctx context.Context) error

	// CommitAll commits all tracked changes with message.
	CommitAll(ctx context.Context, message string) error

	// CreateTag tags HEAD. An empty message creates a lightweight tag,
	// otherwise an annotated one.
	CreateTag(ctx context.Context, name, message string) error
}

// Author overrides the identity used for commits and annotated tags.
// Zero value means the repository's configured identity.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func (a Author) IsZero() bool {
	return a.Name == "" && a.Email == ""
}

// New returns the client for backend operating on dir.
func New(backend, dir string, author Author, log *zap.Logger) (RepoClient, error) {
	switch backend {
	case BackendExec, "":
		return NewGitCLI(dir, author, log), nil
	case BackendGoGit:
		return NewGoGit(dir, author, log), nil
	default:
		return nil, fmt.Errorf("unknown backend %q: want %s | %s", backend, BackendExec, BackendGoGit)
	}
}
