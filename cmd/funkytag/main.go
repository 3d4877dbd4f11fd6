package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/funkytag/pkg/config"
	"github.com/funkytag/pkg/logging"
	"github.com/funkytag/pkg/release"
	"github.com/funkytag/pkg/tagger"
	"github.com/funkytag/pkg/task"
	"github.com/funkytag/pkg/version"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "funkytag",
		Short:         "Commit and tag a release",
		Long:          `Checks that the project version is a valid semantic version above every existing version tag, commits outstanding changes with the version as message, and tags HEAD as v<version>.`,
		Version:       fmt.Sprintf("%s (%s)", buildVersion, buildCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.Flags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "tag",
			Short: "Commit outstanding changes and tag HEAD with the project version",
			Args:  cobra.NoArgs,
			RunE:  runTasks(func([]string) []string { return []string{"tag"} }),
		},
		&cobra.Command{
			Use:       "bump [major|minor|patch|prerelease]",
			Short:     "Increment the version recorded in the manifest",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: []string{version.Major, version.Minor, version.Patch, version.Prerelease},
			RunE:      runTasks(func(args []string) []string { return []string{withArg("bump", args)} }),
		},
		&cobra.Command{
			Use:   "release [major|minor|patch|prerelease]",
			Short: "Bump the manifest version, then commit and tag",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runTasks(func(args []string) []string { return []string{withArg("release", args)} }),
		},
		&cobra.Command{
			Use:   "run <task[:arg]>...",
			Short: "Run registered tasks in order",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runTasks(func(args []string) []string { return args }),
		},
		&cobra.Command{
			Use:   "tasks",
			Short: "List registered tasks",
			Args:  cobra.NoArgs,
			RunE:  listTasks,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		var werr *tagger.Error
		if errors.As(err, &werr) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func withArg(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + ":" + args[0]
}

// setup loads configuration and builds the task registry with every
// release task registered.
func setup(cmd *cobra.Command) (*task.Registry, func(), error) {
	cfg, err := config.Load(config.Path(cmd.Flags()))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			fmt.Fprintf(os.Stderr, "warning: could not load config file: %v (using defaults)\n", err)
		}
		cfg = config.Default()
	}

	cfg = config.MergeFlags(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	sync := func() { _ = logging.Sync(log) }

	if cfg.DryRun {
		log.Info("dry-run mode: the repository and manifest will not be changed")
	}

	r := task.NewRegistry(log)
	if err := release.New(cfg, log, cmd.OutOrStdout()).Register(r); err != nil {
		sync()
		return nil, nil, err
	}
	return r, sync, nil
}

func runTasks(specs func(args []string) []string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, sync, err := setup(cmd)
		if err != nil {
			return err
		}
		defer sync()

		return r.RunAll(cmd.Context(), specs(args)...)
	}
}

func listTasks(cmd *cobra.Command, _ []string) error {
	r, sync, err := setup(cmd)
	if err != nil {
		return err
	}
	defer sync()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-----------")
	for _, t := range r.List() {
		desc := t.Description
		if len(t.Steps) > 0 {
			desc += " (runs " + strings.Join(t.Steps, ", ") + ")"
		}
		fmt.Fprintf(w, "%s\t%s\n", t.Name, desc)
	}
	return w.Flush()
}
