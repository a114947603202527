package msg

import (
	"github.com/Iron-Ham/prtasks/internal/extract"
)

// TasksMsg carries the outcome of one getTasks request.
// Seq identifies the request so that a stale reply from before a refresh can
// be dropped.
type TasksMsg struct {
	Seq    int
	Result extract.Result
	Err    error
}

// CopiedMsg reports the outcome of writing task IDs to the clipboard.
type CopiedMsg struct {
	Err error
}

// CopyResetMsg asks the model to restore the copy label.
// Only the reset matching the latest copy is honored.
type CopyResetMsg struct {
	Seq int
}
