package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/prtasks/internal/config"
	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/pr"
	"github.com/Iron-Ham/prtasks/internal/tui"
)

// Output formats accepted by --format.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
)

// report is what the non-interactive commands print.
type report struct {
	source   string
	result   extract.Result
	template string
}

func checkFormat(format string) error {
	if !slices.Contains(config.ValidOutputFormats(), format) {
		return errors.NewValidationError("valid formats: " + strings.Join(config.ValidOutputFormats(), ", ")).
			WithField("format").
			WithValue(format)
	}
	return nil
}

// write renders r in format to w.
func (r report) write(w io.Writer, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.result)

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.result); err != nil {
			return err
		}
		return enc.Close()

	case formatMarkdown:
		tmpl := r.template
		if tmpl == "" {
			tmpl = pr.DefaultSummaryTemplate
		}
		out, err := pr.RenderTemplate(tmpl, pr.NewTemplateData(r.source, r.result))
		if err != nil {
			return errors.Wrap(err, "failed to render template")
		}
		_, err = io.WriteString(w, out)
		return err

	default:
		return r.writeText(w)
	}
}

// writeText prints the same header and rows the interactive view shows.
func (r report) writeText(w io.Writer) error {
	if len(r.result.TaskIDs) == 0 {
		_, err := fmt.Fprintln(w, "No task IDs found")
		return err
	}

	if _, err := fmt.Fprintln(w, tui.TaskCountHeader(len(r.result.TaskIDs))); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, id := range r.result.TaskIDs {
		fmt.Fprintf(tw, "%s\t%s\n", id, tui.CommitLabel(r.result.CommitCount(id)))
	}
	return tw.Flush()
}

// fingerprint identifies a result by its IDs and commit counts, the parts
// the output shows.
func fingerprint(res extract.Result) string {
	var b strings.Builder
	for _, id := range res.TaskIDs {
		fmt.Fprintf(&b, "%s:%d\n", id, res.CommitCount(id))
	}
	return b.String()
}
