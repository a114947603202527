package msg

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/prtasks/internal/clipboard"
	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/page"
)

// TaskRequester is the part of page.Requester the presenter depends on.
type TaskRequester interface {
	RequestTasks(ctx context.Context, tab page.Tab) (extract.Result, error)
}

// RequestTasks returns a command that asks the extractor on tab for its task IDs.
func RequestTasks(ctx context.Context, r TaskRequester, tab page.Tab, seq int) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return TasksMsg{Seq: seq, Result: extract.EmptyResult()}
		}
		res, err := r.RequestTasks(ctx, tab)
		return TasksMsg{Seq: seq, Result: res, Err: err}
	}
}

// CopyIDs returns a command that writes the newline-joined IDs to the clipboard.
func CopyIDs(w clipboard.Writer, ids []string) tea.Cmd {
	return func() tea.Msg {
		if w == nil {
			return CopiedMsg{Err: errors.ErrClipboardUnavailable}
		}
		return CopiedMsg{Err: w.Copy(clipboard.JoinIDs(ids))}
	}
}

// ResetCopyAfter returns a command that sends a CopyResetMsg after d.
func ResetCopyAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return CopyResetMsg{Seq: seq}
	})
}
