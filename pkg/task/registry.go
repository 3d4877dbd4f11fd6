// Package task is a small named-task runner. Tasks are registered
// explicitly at startup and invoked as "name" or "name:arg:arg".
package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrUnknownTask is returned when running a name that was never registered.
var ErrUnknownTask = errors.New("unknown task")

// Func runs a task with the colon-separated arguments it was invoked with.
type Func func(ctx context.Context, args []string) error

type Task struct {
	Name        string
	Description string
	// Steps is set for aliases.
	Steps []string

	run Func
}

type Registry struct {
	tasks   map[string]*Task
	running map[string]bool
	log     *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		tasks:   make(map[string]*Task),
		running: make(map[string]bool),
		log:     log.Named("task"),
	}
}

func (r *Registry) Register(name, description string, fn Func) error {
	if err := r.checkName(name); err != nil {
		return err
	}
	r.tasks[name] = &Task{Name: name, Description: description, run: fn}
	return nil
}

// Alias registers name as running steps in order. Steps may carry
// arguments ("bump:minor") and may name other aliases.
func (r *Registry) Alias(name, description string, steps ...string) error {
	if err := r.checkName(name); err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("alias %q has no steps", name)
	}
	r.tasks[name] = &Task{Name: name, Description: description, Steps: steps}
	return nil
}

func (r *Registry) checkName(name string) error {
	if name == "" || strings.Contains(name, ":") {
		return fmt.Errorf("invalid task name %q", name)
	}
	if _, ok := r.tasks[name]; ok {
		return fmt.Errorf("task %q already registered", name)
	}
	return nil
}

// Run executes spec and stops at the first failing task.
func (r *Registry) Run(ctx context.Context, spec string) error {
	name, args := Parse(spec)

	t, ok := r.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	if r.running[name] {
		return fmt.Errorf("task %q invokes itself", name)
	}
	r.running[name] = true
	defer delete(r.running, name)

	r.log.Debug("running", zap.String("task", name), zap.Strings("args", args))

	if t.run != nil {
		if err := t.run(ctx, args); err != nil {
			return fmt.Errorf("task %s: %w", spec, err)
		}
		return nil
	}

	if len(args) > 0 {
		return fmt.Errorf("alias %q takes no arguments", name)
	}
	for _, step := range t.Steps {
		if err := r.Run(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// RunAll executes each spec in order, stopping at the first failure.
func (r *Registry) RunAll(ctx context.Context, specs ...string) error {
	for _, spec := range specs {
		if err := r.Run(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

// List returns registered tasks sorted by name.
func (r *Registry) List() []*Task {
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parse splits "name:arg1:arg2" into the task name and its arguments.
func Parse(spec string) (string, []string) {
	parts := strings.Split(spec, ":")
	return parts[0], parts[1:]
}
