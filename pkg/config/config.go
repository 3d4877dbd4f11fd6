// Package config loads tool settings from a YAML file and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/funkytag/pkg/logging"
	"github.com/funkytag/pkg/tagger"
	"github.com/funkytag/pkg/vcs"
)

const DefaultPath = ".funkytag.yml"

type Config struct {
	Dir           string         `yaml:"dir"`
	Manifest      string         `yaml:"manifest"`
	Backend       string         `yaml:"backend"`
	CommitFailure string         `yaml:"commit_failure"`
	Timeout       time.Duration  `yaml:"timeout"`
	Output        string         `yaml:"output"`
	Tag           Tag            `yaml:"tag"`
	Author        vcs.Author     `yaml:"author"`
	Log           logging.Config `yaml:"log"`
	DryRun        bool           `yaml:"-"`
	Version       string         `yaml:"-"`
}

type Tag struct {
	Annotate bool   `yaml:"annotate"`
	Message  string `yaml:"message"`
}

func Default() *Config {
	return &Config{
		Dir:           ".",
		Backend:       vcs.BackendExec,
		CommitFailure: string(tagger.CommitFatal),
		Output:        "table",
		Tag: Tag{
			Message: "{{version}}",
		},
		Log: logging.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags registers the flags MergeFlags reads.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", DefaultPath, "Path to config file")
	fs.StringP("dir", "C", "", "Repository directory (default: current directory)")
	fs.String("manifest", "", "Manifest holding the version (auto-detected if omitted)")
	fs.String("target-version", "", "Version to release instead of the manifest version")
	fs.String("backend", "", "Git backend: exec | go-git")
	fs.String("commit-failure", "", "On commit failure: fatal | warn")
	fs.Duration("timeout", 0, "Abort the run after this long (0 disables)")
	fs.String("output", "", "Output format: table | json")
	fs.Bool("dry-run", false, "Report what would be committed and tagged without changing the repository")
	fs.Bool("annotate", false, "Create an annotated tag")
	fs.String("log-level", "", "Log level: debug | info | warn | error")
	fs.String("log-format", "", "Log format: console | json")
}

// Path returns the config file to load: --config when given, otherwise
// DefaultPath inside --dir.
func Path(flags *pflag.FlagSet) string {
	path, err := flags.GetString("config")
	if err != nil || path == "" {
		path = DefaultPath
	}
	if flags.Changed("config") {
		return path
	}
	if dir, err := flags.GetString("dir"); err == nil && dir != "" {
		return filepath.Join(dir, DefaultPath)
	}
	return path
}

func MergeFlags(cfg *Config, flags *pflag.FlagSet) *Config {
	if v, err := flags.GetString("dir"); err == nil && v != "" {
		cfg.Dir = v
	}
	if v, err := flags.GetString("manifest"); err == nil && v != "" {
		cfg.Manifest = v
	}
	if v, err := flags.GetString("target-version"); err == nil && v != "" {
		cfg.Version = v
	}
	if v, err := flags.GetString("backend"); err == nil && v != "" {
		cfg.Backend = v
	}
	if v, err := flags.GetString("commit-failure"); err == nil && v != "" {
		cfg.CommitFailure = v
	}
	if v, err := flags.GetDuration("timeout"); err == nil && flags.Changed("timeout") {
		cfg.Timeout = v
	}
	if v, err := flags.GetString("output"); err == nil && v != "" {
		cfg.Output = v
	}
	if v, err := flags.GetBool("dry-run"); err == nil {
		cfg.DryRun = v
	}
	if v, err := flags.GetBool("annotate"); err == nil && v {
		cfg.Tag.Annotate = true
	}
	if v, err := flags.GetString("log-level"); err == nil && v != "" {
		cfg.Log.Level = v
	}
	if v, err := flags.GetString("log-format"); err == nil && v != "" {
		cfg.Log.Format = v
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Backend != vcs.BackendExec && c.Backend != vcs.BackendGoGit {
		return fmt.Errorf("backend must be %q or %q, got %q", vcs.BackendExec, vcs.BackendGoGit, c.Backend)
	}
	if !tagger.CommitPolicy(c.CommitFailure).Valid() {
		return fmt.Errorf("commit_failure must be %q or %q, got %q", tagger.CommitFatal, tagger.CommitWarn, c.CommitFailure)
	}
	if c.Output != "table" && c.Output != "json" {
		return fmt.Errorf("output must be 'table' or 'json', got %q", c.Output)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Tag.Annotate && c.Tag.Message == "" {
		return fmt.Errorf("tag.message must be set when tag.annotate is enabled")
	}
	return c.Log.Validate()
}
