package tagger_test

import (
	"context"
	"slices"
)

// fakeRepo is an in-memory vcs.RepoClient. HEAD is the last entry of
// commits; tags map names to the commit they point at.
type fakeRepo struct {
	missing   bool
	dirty     bool
	listErr   error
	stageErr  error
	commitErr error
	tagErr    error

	// during runs inside every call, after it is recorded and before the
	// call looks at ctx.
	during func(call string)

	commits  []string
	tags     map[string]string
	messages map[string]string
	calls    []string
}

func newFakeRepo(tags ...string) *fakeRepo {
	r := &fakeRepo{
		commits:  []string{"initial"},
		tags:     make(map[string]string),
		messages: make(map[string]string),
	}
	for _, tag := range tags {
		r.tags[tag] = "initial"
	}
	return r
}

func (r *fakeRepo) record(call string) {
	r.calls = append(r.calls, call)
	if r.during != nil {
		r.during(call)
	}
}

func (r *fakeRepo) Exists(ctx context.Context) bool {
	r.record("exists")
	return ctx.Err() == nil && !r.missing
}

func (r *fakeRepo) ListTags(ctx context.Context) ([]string, error) {
	r.record("list")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.listErr != nil {
		return nil, r.listErr
	}
	names := make([]string, 0, len(r.tags))
	for name := range r.tags {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (r *fakeRepo) IsClean(ctx context.Context) bool {
	r.record("clean")
	return ctx.Err() == nil && !r.dirty
}

func (r *fakeRepo) StageAll(ctx context.Context) error {
	r.record("stage")
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.stageErr
}

func (r *fakeRepo) CommitAll(ctx context.Context, message string) error {
	r.record("commit")
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.commitErr != nil {
		return r.commitErr
	}
	r.commits = append(r.commits, message)
	r.dirty = false
	return nil
}

func (r *fakeRepo) CreateTag(ctx context.Context, name, message string) error {
	r.record("tag")
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tagErr != nil {
		return r.tagErr
	}
	r.tags[name] = r.head()
	if message != "" {
		r.messages[name] = message
	}
	return nil
}

func (r *fakeRepo) head() string {
	return r.commits[len(r.commits)-1]
}

func (r *fakeRepo) mutated() bool {
	return slices.ContainsFunc(r.calls, func(c string) bool {
		return c == "stage" || c == "commit" || c == "tag"
	})
}
