// Package release wires configuration, the project manifest, the
// repository client and the tagger into the tasks exposed to the task
// runner.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/funkytag/pkg/config"
	"github.com/funkytag/pkg/manifest"
	"github.com/funkytag/pkg/reporter"
	"github.com/funkytag/pkg/tagger"
	"github.com/funkytag/pkg/task"
	"github.com/funkytag/pkg/vcs"
	"github.com/funkytag/pkg/version"
)

type App struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer

	// bumped holds the version produced by bump in this process, so a
	// dry-run release tags the version it would have written.
	bumped string
}

func New(cfg *config.Config, log *zap.Logger, out io.Writer) *App {
	return &App{cfg: cfg, log: log, out: out}
}

// Register adds the release tasks to r.
func (a *App) Register(r *task.Registry) error {
	if err := r.Register("tag", "Commit and tag.", a.Tag); err != nil {
		return err
	}
	if err := r.Register("bump", "Increment the manifest version: bump[:major|minor|patch|prerelease].", a.Bump); err != nil {
		return err
	}
	err := r.Register("release", "Bump the version, then commit and tag: release[:kind].", func(ctx context.Context, args []string) error {
		kind := version.Patch
		if len(args) > 0 && args[0] != "" {
			kind = args[0]
		}
		return r.RunAll(ctx, "bump:"+kind, "tag")
	})
	if err != nil {
		return err
	}
	return r.Alias("default", "Patch release.", "release")
}

// Tag runs the version-gated commit and tag step.
func (a *App) Tag(ctx context.Context, _ []string) error {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	target, err := a.targetVersion()
	if err != nil {
		return err
	}

	repo, err := vcs.New(a.cfg.Backend, a.cfg.Dir, a.cfg.Author, a.log)
	if err != nil {
		return err
	}
	if a.cfg.DryRun {
		repo = vcs.NewDryRun(repo, a.log)
	}

	opts := []tagger.Option{
		tagger.WithLogger(a.log.Named("tagger")),
		tagger.WithCommitPolicy(tagger.CommitPolicy(a.cfg.CommitFailure)),
	}
	if a.cfg.Tag.Annotate {
		opts = append(opts, tagger.WithAnnotation(a.cfg.Tag.Message))
	}

	res, runErr := tagger.New(version.New(), repo, opts...).Run(ctx, target)
	if res != nil {
		res.DryRun = a.cfg.DryRun
		if err := reporter.New(a.cfg.Output, a.out).Report(res); err != nil {
			a.log.Warn("failed to write report", zap.Error(err))
		}
	}

	var werr *tagger.Error
	if errors.As(runErr, &werr) && werr.Output != "" {
		a.log.Error("git output", zap.String("output", werr.Output))
	}
	return runErr
}

// Bump increments the manifest version by the kind given as first arg.
func (a *App) Bump(_ context.Context, args []string) error {
	kind := version.Patch
	if len(args) > 0 && args[0] != "" {
		kind = args[0]
	}

	path, err := a.manifestPath()
	if err != nil {
		return err
	}
	raw, err := manifest.ReadVersion(path)
	if err != nil {
		return err
	}

	current, ok := version.New().Parse(raw)
	if !ok {
		return &tagger.Error{Kind: tagger.InvalidVersion, Version: raw}
	}
	next, err := version.Increment(current, kind)
	if err != nil {
		return err
	}

	a.bumped = next.String()
	a.log.Info("bumping version",
		zap.String("manifest", path),
		zap.String("from", current.String()),
		zap.String("to", a.bumped),
	)

	prefix := ""
	if a.cfg.DryRun {
		prefix = "(dry run) "
	} else if err := manifest.WriteVersion(path, a.bumped); err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.out, "%sBumped to: %s\n", prefix, a.bumped)
	return err
}

// targetVersion prefers an explicit version, then one bumped earlier in
// this process, then the manifest.
func (a *App) targetVersion() (string, error) {
	if a.cfg.Version != "" {
		return a.cfg.Version, nil
	}
	if a.bumped != "" {
		return a.bumped, nil
	}
	path, err := a.manifestPath()
	if err != nil {
		return "", err
	}
	return manifest.ReadVersion(path)
}

func (a *App) manifestPath() (string, error) {
	if a.cfg.Manifest == "" {
		return manifest.Detect(a.cfg.Dir)
	}
	if filepath.IsAbs(a.cfg.Manifest) {
		return a.cfg.Manifest, nil
	}
	return filepath.Join(a.cfg.Dir, a.cfg.Manifest), nil
}
