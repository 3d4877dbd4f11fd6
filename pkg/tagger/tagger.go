// Package tagger runs the version-gated release step: validate the target
// version, make sure it is above every existing version tag, commit any
// outstanding changes and tag HEAD.
package tagger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"

	"github.com/funkytag/pkg/vcs"
	"github.com/funkytag/pkg/version"
)

// TagPrefix is prepended to the version to form the tag name. Other
// tooling depends on it, so it is not configurable.
const TagPrefix = "v"

// CommitPolicy decides what a failed stage or commit does to the run.
type CommitPolicy string

const (
	// CommitFatal stops the run before tagging.
	CommitFatal CommitPolicy = "fatal"
	// CommitWarn logs a warning and tags the current HEAD anyway.
	CommitWarn CommitPolicy = "warn"
)

func (p CommitPolicy) Valid() bool {
	return p == CommitFatal || p == CommitWarn
}

// Result describes what a run changed in the repository.
type Result struct {
	Version   string `json:"version"`
	Tag       string `json:"tag"`
	Highest   string `json:"highest"`
	Committed bool   `json:"committed"`
	Tagged    bool   `json:"tagged"`
	DryRun    bool   `json:"dry_run"`
}

type Tagger struct {
	comparator version.Comparator
	repo       vcs.RepoClient
	log        *zap.Logger
	policy     CommitPolicy
	message    string
}

type Option func(*Tagger)

func WithLogger(log *zap.Logger) Option {
	return func(t *Tagger) {
		t.log = log
	}
}

func WithCommitPolicy(p CommitPolicy) Option {
	return func(t *Tagger) {
		t.policy = p
	}
}

// WithAnnotation makes tags annotated, with a message rendered from tmpl.
// The placeholders {{version}} and {{tag}} are substituted.
func WithAnnotation(tmpl string) Option {
	return func(t *Tagger) {
		t.message = tmpl
	}
}

func New(comparator version.Comparator, repo vcs.RepoClient, opts ...Option) *Tagger {
	t := &Tagger{
		comparator: comparator,
		repo:       repo,
		log:        zap.NewNop(),
		policy:     CommitFatal,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TagName returns the tag created for v.
func TagName(v string) string {
	return TagPrefix + v
}

// Run executes the release step once for target. Each check must pass
// before the next runs. Result is non-nil whenever the repository may have
// been changed, including when a later step failed.
func (t *Tagger) Run(ctx context.Context, target string) (*Result, error) {
	// Make sure we have a valid version
	v, ok := t.comparator.Parse(target)
	if !ok {
		return nil, &Error{Kind: InvalidVersion, Version: target}
	}
	ver := v.Original()

	// Make sure we have a repository
	if err := interrupted(ctx, "check repository"); err != nil {
		return nil, err
	}
	if !t.repo.Exists(ctx) {
		if err := interrupted(ctx, "check repository"); err != nil {
			return nil, err
		}
		return nil, &Error{Kind: RepositoryNotFound, Version: ver}
	}

	highest := t.highestTag(ctx)
	if err := interrupted(ctx, "list tags"); err != nil {
		return nil, err
	}
	if t.comparator.Compare(v, highest) <= 0 {
		return nil, &Error{Kind: VersionNotGreater, Version: ver, Highest: highest.String()}
	}

	res := &Result{
		Version: ver,
		Tag:     TagName(ver),
		Highest: highest.String(),
	}

	if err := interrupted(ctx, "check working tree"); err != nil {
		return nil, err
	}
	if !t.repo.IsClean(ctx) {
		if err := interrupted(ctx, "check working tree"); err != nil {
			return nil, err
		}
		if err := t.commit(ctx, ver); err != nil {
			if t.policy != CommitWarn {
				return res, &Error{Kind: CommitFailed, Version: ver, Output: outputOf(err), Err: err}
			}
			t.log.Warn("commit failed, tagging current HEAD",
				zap.String("version", ver),
				zap.String("output", outputOf(err)),
				zap.Error(err),
			)
		} else {
			res.Committed = true
			t.log.Info("committed", zap.String("version", ver))
		}
	}

	message, err := t.annotation(ver, res.Tag)
	if err != nil {
		return res, &Error{Kind: TagCreationFailed, Version: ver, Err: err}
	}
	if err := interrupted(ctx, "create tag"); err != nil {
		return res, err
	}
	if err := t.repo.CreateTag(ctx, res.Tag, message); err != nil {
		return res, &Error{Kind: TagCreationFailed, Version: ver, Output: outputOf(err), Err: err}
	}

	res.Tagged = true
	t.log.Info("tagged", zap.String("tag", res.Tag))
	return res, nil
}

// interrupted reports a cancelled or expired run. Backends answer
// Exists and IsClean with false once ctx is done, so the state of ctx has
// to be checked before trusting those answers.
func interrupted(ctx context.Context, step string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}

// highestTag falls back to version.Zero when tags cannot be listed.
func (t *Tagger) highestTag(ctx context.Context) *semver.Version {
	tags, err := t.repo.ListTags(ctx)
	if err != nil {
		t.log.Debug("could not list tags, assuming none", zap.Error(err))
		tags = nil
	}

	highest := version.Highest(t.comparator, tags)
	t.log.Debug("highest existing tag",
		zap.Int("tags", len(tags)),
		zap.String("highest", highest.String()),
	)
	return highest
}

func (t *Tagger) commit(ctx context.Context, message string) error {
	if err := t.repo.StageAll(ctx); err != nil {
		return err
	}
	return t.repo.CommitAll(ctx, message)
}

func (t *Tagger) annotation(ver, tag string) (string, error) {
	if t.message == "" {
		return "", nil
	}

	tpl, err := fasttemplate.NewTemplate(t.message, "{{", "}}")
	if err != nil {
		return "", fmt.Errorf("parse tag message %q: %w", t.message, err)
	}

	return tpl.ExecuteString(map[string]any{
		"version": ver,
		"tag":     tag,
	}), nil
}

func outputOf(err error) string {
	var cmdErr *vcs.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Output
	}
	return ""
}
