package pr

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Iron-Ham/prtasks/internal/extract"
)

// DefaultSummaryTemplate renders a task list suitable for a pull request
// description.
const DefaultSummaryTemplate = `## Tasks
{{range .Tasks}}- {{.ID}} ({{plural .Commits "commit"}})
{{else}}_No task IDs found in commit messages._
{{end}}`

// TaskLine is one task as seen by summary templates.
type TaskLine struct {
	ID       string
	Commits  int
	Messages []string
}

// TemplateData contains all data available to summary templates.
type TemplateData struct {
	// Source is the page URL or pull request reference the tasks came from.
	Source string
	// Tasks is in task ID order.
	Tasks []TaskLine
	// IDs is the newline-joined ID list, the same text the copy action uses.
	IDs string
}

// NewTemplateData flattens a result for templates.
func NewTemplateData(source string, res extract.Result) TemplateData {
	data := TemplateData{Source: source, IDs: strings.Join(res.TaskIDs, "\n")}
	for _, id := range res.TaskIDs {
		line := TaskLine{ID: id}
		if rec := res.TaskDetails[id]; rec != nil {
			line.Commits = len(rec.Commits)
			for _, c := range rec.Commits {
				line.Messages = append(line.Messages, c.Message)
			}
		}
		data.Tasks = append(data.Tasks, line)
	}
	return data
}

var templateFuncs = template.FuncMap{
	"plural": Plural,
}

// ValidateTemplate reports whether tmplStr parses as a summary template.
func ValidateTemplate(tmplStr string) error {
	_, err := template.New("summary").Funcs(templateFuncs).Parse(tmplStr)
	return err
}

// RenderTemplate renders a summary template with the given data.
func RenderTemplate(tmplStr string, data TemplateData) (string, error) {
	tmpl, err := template.New("summary").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Plural formats a count with a noun, adding "s" unless n is 1.
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
