package msg

import (
	"context"
	"testing"
	"time"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/page"
)

type fakeRequester struct {
	res extract.Result
	err error
	got page.Tab
}

func (f *fakeRequester) RequestTasks(_ context.Context, tab page.Tab) (extract.Result, error) {
	f.got = tab
	return f.res, f.err
}

type recordingWriter struct {
	text string
	err  error
}

func (w *recordingWriter) Copy(text string) error {
	w.text = text
	return w.err
}

func TestRequestTasks(t *testing.T) {
	c := extract.NewCollector()
	c.Add("ABC-1 first", "")
	r := &fakeRequester{res: c.Result()}
	tab := page.Tab{ID: "tab-1", URL: "https://github.com/a/b/pull/1"}

	result := RequestTasks(context.Background(), r, tab, 7)()

	m, ok := result.(TasksMsg)
	if !ok {
		t.Fatalf("RequestTasks() returned %T, want TasksMsg", result)
	}
	if m.Seq != 7 {
		t.Errorf("Seq = %d, want 7", m.Seq)
	}
	if len(m.Result.TaskIDs) != 1 || m.Result.TaskIDs[0] != "ABC-1" {
		t.Errorf("TaskIDs = %v, want [ABC-1]", m.Result.TaskIDs)
	}
	if r.got.ID != "tab-1" {
		t.Errorf("requested tab = %q, want tab-1", r.got.ID)
	}
}

func TestRequestTasks_Error(t *testing.T) {
	r := &fakeRequester{err: errors.ErrNotPRPage}

	m := RequestTasks(context.Background(), r, page.Tab{}, 1)().(TasksMsg)
	if !errors.Is(m.Err, errors.ErrNotPRPage) {
		t.Errorf("Err = %v, want ErrNotPRPage", m.Err)
	}
}

func TestRequestTasks_NilRequester(t *testing.T) {
	m := RequestTasks(context.Background(), nil, page.Tab{}, 3)().(TasksMsg)
	if m.Err != nil || len(m.Result.TaskIDs) != 0 {
		t.Errorf("msg = %+v, want empty result", m)
	}
}

func TestCopyIDs(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		writeErr error
		want     string
	}{
		{"single", []string{"ABC-1"}, nil, "ABC-1"},
		{"several", []string{"ABC-1", "XYZ-9", "42"}, nil, "ABC-1\nXYZ-9\n42"},
		{"failure", []string{"ABC-1"}, errors.ErrClipboardUnavailable, "ABC-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &recordingWriter{err: tt.writeErr}
			m := CopyIDs(w, tt.ids)().(CopiedMsg)
			if w.text != tt.want {
				t.Errorf("copied %q, want %q", w.text, tt.want)
			}
			if !errors.Is(m.Err, tt.writeErr) {
				t.Errorf("Err = %v, want %v", m.Err, tt.writeErr)
			}
		})
	}
}

func TestCopyIDs_NilWriter(t *testing.T) {
	m := CopyIDs(nil, []string{"ABC-1"})().(CopiedMsg)
	if !errors.Is(m.Err, errors.ErrClipboardUnavailable) {
		t.Errorf("Err = %v, want ErrClipboardUnavailable", m.Err)
	}
}

func TestResetCopyAfter(t *testing.T) {
	cmd := ResetCopyAfter(20*time.Millisecond, 4)
	if cmd == nil {
		t.Fatal("ResetCopyAfter() returned nil command")
	}

	start := time.Now()
	result := cmd()
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("ResetCopyAfter() returned too quickly: %v", elapsed)
	}

	m, ok := result.(CopyResetMsg)
	if !ok {
		t.Fatalf("ResetCopyAfter() returned %T, want CopyResetMsg", result)
	}
	if m.Seq != 4 {
		t.Errorf("Seq = %d, want 4", m.Seq)
	}
}
