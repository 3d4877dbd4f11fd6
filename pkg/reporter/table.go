package reporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/funkytag/pkg/tagger"
)

type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) Report(res *tagger.Result) error {
	if res == nil {
		return nil
	}

	prefix := ""
	if res.DryRun {
		prefix = "(dry run) "
	}

	w := tabwriter.NewWriter(r.w, 0, 0, 1, ' ', 0)
	if res.Committed {
		fmt.Fprintf(w, "%sCommitted as:\t%s\n", prefix, res.Version)
	}
	if res.Tagged {
		fmt.Fprintf(w, "%sTagged as:\t%s\n", prefix, res.Version)
	}
	if !res.Committed && !res.Tagged {
		fmt.Fprintf(w, "%sNothing committed or tagged for %s\n", prefix, res.Version)
	}
	return w.Flush()
}
