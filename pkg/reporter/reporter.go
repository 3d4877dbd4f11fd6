// Package reporter prints the outcome of a release run.
package reporter

import (
	"io"

	"github.com/funkytag/pkg/tagger"
)

type Reporter interface {
	Report(res *tagger.Result) error
}

func New(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}
