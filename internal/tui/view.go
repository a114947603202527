package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/pr"
	"github.com/Iron-Ham/prtasks/internal/tui/styles"
)

// Labels shown by the presenter.
const (
	appTitle       = "PR Tasks"
	loadingLabel   = "Extracting task IDs..."
	emptyHeader    = "No task IDs found"
	emptyBody      = "No task IDs found in commit messages."
	copyLabel      = "Copy all"
	copiedLabel    = "✓ Copied!"
	copyFailedText = "✗ Copy failed"
)

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(appTitle))
	b.WriteString("\n")

	switch m.state {
	case StateLoading:
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), loadingLabel))
	case StateError:
		b.WriteString(m.errorView())
	case StateEmpty:
		b.WriteString(styles.Header.Render(emptyHeader))
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render(emptyBody))
		b.WriteString("\n")
	case StatePopulated:
		b.WriteString(m.populatedView())
	}

	b.WriteString(styles.HelpBar.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) populatedView() string {
	var b strings.Builder
	b.WriteString(styles.Header.Render(TaskCountHeader(len(m.result.TaskIDs))))
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.taskRows())
	}
	b.WriteString("\n\n")
	b.WriteString(m.copyView())
	b.WriteString("\n")
	return b.String()
}

// taskRows renders one line per task ID, IDs padded to a common width.
func (m Model) taskRows() string {
	if len(m.result.TaskIDs) == 0 {
		return ""
	}

	width := 0
	for _, id := range m.result.TaskIDs {
		width = max(width, lipgloss.Width(id))
	}

	rows := make([]string, 0, len(m.result.TaskIDs))
	for _, id := range m.result.TaskIDs {
		pad := strings.Repeat(" ", width-lipgloss.Width(id))
		row := fmt.Sprintf("%s%s  %s",
			styles.TaskID.Render(id),
			pad,
			styles.CommitCount.Render(CommitLabel(m.result.CommitCount(id))),
		)
		rows = append(rows, fitWidth(row, m.width))
	}
	return strings.Join(rows, "\n")
}

// fitWidth cuts s to width visual columns, keeping escape sequences intact.
// A width of zero means unknown and leaves s alone.
func fitWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return ansi.Truncate(s, width, "…")
}

func (m Model) copyView() string {
	switch {
	case m.copied:
		return styles.CopyButtonDone.Render(copiedLabel)
	case m.copyFailed:
		return styles.ErrorMsg.Render(copyFailedText)
	default:
		return styles.CopyButton.Render(copyLabel)
	}
}

func (m Model) errorView() string {
	title, hint := errorText(m.err)
	return fmt.Sprintf("%s\n%s\n",
		styles.ErrorMsg.Render(styles.StateIcon(StateError.String())+" "+title),
		styles.Muted.Render(hint),
	)
}

// errorText maps a request error to the title and hint shown in the Error state.
func errorText(err error) (title, hint string) {
	switch {
	case errors.Is(err, errors.ErrNotPRPage):
		return "Not on a PR page", "Open a pull request page, then press r to retry."
	case errors.Is(err, errors.ErrHostNotAllowed):
		return "Host not allowed", "Add the host to page.hosts in the config file."
	case errors.Is(err, errors.ErrTimeout):
		return "The page took too long to load", "Press r to retry."
	case errors.Is(err, errors.ErrNotAttached), errors.Is(err, errors.ErrNoResponse):
		return "Could not reach the page", "The page did not answer. Press r to retry."
	case errors.Is(err, errors.ErrFetchFailed):
		if errors.IsRetryable(err) {
			return "Could not load the page", "The server is having trouble. Press r to retry."
		}
		return "Could not load the page", "Check the address and your connection, then press r."
	case errors.IsUserFacing(err):
		return "Could not read task IDs", err.Error()
	default:
		return "Could not read task IDs", "Something went wrong while scanning the page. Press r to retry."
	}
}

// TaskCountHeader formats the populated header, e.g. "3 unique tasks found".
func TaskCountHeader(n int) string {
	return fmt.Sprintf("%s found", pr.Plural(n, "unique task"))
}

// CommitLabel formats a per-task commit count, e.g. "1 commit".
func CommitLabel(n int) string {
	return pr.Plural(n, "commit")
}
