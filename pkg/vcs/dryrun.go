package vcs

import (
	"context"

	"go.uber.org/zap"
)

// DryRun passes queries through to the wrapped client and only logs the
// operations that would change the repository.
type DryRun struct {
	next RepoClient
	log  *zap.Logger
}

func NewDryRun(next RepoClient, log *zap.Logger) *DryRun {
	return &DryRun{next: next, log: log.Named("dry-run")}
}

func (d *DryRun) Exists(ctx context.Context) bool {
	return d.next.Exists(ctx)
}

func (d *DryRun) ListTags(ctx context.Context) ([]string, error) {
	return d.next.ListTags(ctx)
}

func (d *DryRun) IsClean(ctx context.Context) bool {
	return d.next.IsClean(ctx)
}

func (d *DryRun) StageAll(_ context.Context) error {
	d.log.Info("would stage all changes")
	return nil
}

func (d *DryRun) CommitAll(_ context.Context, message string) error {
	d.log.Info("would commit", zap.String("message", message))
	return nil
}

func (d *DryRun) CreateTag(_ context.Context, name, message string) error {
	d.log.Info("would tag HEAD",
		zap.String("tag", name),
		zap.Bool("annotated", message != ""),
	)
	return nil
}
