package reporter

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/funkytag/pkg/tagger"
)

type JSONReporter struct {
	w io.Writer
}

func (r *JSONReporter) Report(res *tagger.Result) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
