package page

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/testutil"
)

// scriptedChannel answers sends from a queue and records the calls made.
type scriptedChannel struct {
	mu        sync.Mutex
	sends     []time.Time
	attaches  []time.Time
	replies   []reply
	attachErr error
}

type reply struct {
	resp extract.Response
	err  error
}

func (c *scriptedChannel) Send(_ context.Context, tab Tab, _ extract.Request) (extract.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, time.Now())
	if len(c.replies) == 0 {
		return extract.Response{}, errors.NewChannelError("no reply scripted", errors.ErrNoResponse).WithTab(tab.ID)
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.resp, r.err
}

func (c *scriptedChannel) Attach(context.Context, Tab) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attaches = append(c.attaches, time.Now())
	return c.attachErr
}

func notAttached() reply {
	return reply{err: errors.NewChannelError("could not establish connection", errors.ErrNotAttached)}
}

func success(ids ...string) reply {
	c := extract.NewCollector()
	for _, id := range ids {
		c.Add(id+" change", "")
	}
	res := c.Result()
	return reply{resp: extract.Response{Success: true, Data: &res}}
}

func newRequester(t *testing.T, ch Channel, delay time.Duration) *Requester {
	t.Helper()
	q, err := NewQualifier(nil)
	if err != nil {
		t.Fatalf("NewQualifier() error = %v", err)
	}
	return &Requester{Channel: ch, Qualifier: q, RetryDelay: delay}
}

var prTab = Tab{ID: "tab-1", URL: testutil.PRURL, Target: testutil.PRURL}

func TestRequestTasks_FirstSendSucceeds(t *testing.T) {
	ch := &scriptedChannel{replies: []reply{success("ABC-1", "XYZ-9")}}

	res, err := newRequester(t, ch, 50*time.Millisecond).RequestTasks(context.Background(), prTab)
	if err != nil {
		t.Fatalf("RequestTasks() error = %v", err)
	}
	if len(res.TaskIDs) != 2 {
		t.Errorf("TaskIDs = %v", res.TaskIDs)
	}
	if len(ch.sends) != 1 || len(ch.attaches) != 0 {
		t.Errorf("sends = %d, attaches = %d; want 1, 0", len(ch.sends), len(ch.attaches))
	}
}

func TestRequestTasks_AttachesAndRetriesOnce(t *testing.T) {
	ch := &scriptedChannel{replies: []reply{notAttached(), success("ABC-1")}}
	delay := 80 * time.Millisecond

	res, err := newRequester(t, ch, delay).RequestTasks(context.Background(), prTab)
	if err != nil {
		t.Fatalf("RequestTasks() error = %v", err)
	}
	if len(res.TaskIDs) != 1 || res.TaskIDs[0] != "ABC-1" {
		t.Errorf("TaskIDs = %v", res.TaskIDs)
	}

	if len(ch.sends) != 2 || len(ch.attaches) != 1 {
		t.Fatalf("sends = %d, attaches = %d; want 2, 1", len(ch.sends), len(ch.attaches))
	}
	if gap := ch.sends[1].Sub(ch.attaches[0]); gap < delay {
		t.Errorf("resend %v after attach, want at least %v", gap, delay)
	}
}

func TestRequestTasks_SecondFailureIsFinal(t *testing.T) {
	ch := &scriptedChannel{replies: []reply{notAttached(), notAttached(), success("ABC-1")}}

	_, err := newRequester(t, ch, 0).RequestTasks(context.Background(), prTab)
	if !errors.Is(err, errors.ErrNotAttached) {
		t.Fatalf("RequestTasks() error = %v, want ErrNotAttached", err)
	}
	var chErr *errors.ChannelError
	if !errors.As(err, &chErr) || chErr.Attempt != 2 {
		t.Errorf("error = %v, want attempt 2", err)
	}
	if len(ch.sends) != 2 {
		t.Errorf("sends = %d, want exactly 2", len(ch.sends))
	}
}

func TestRequestTasks_AttachFailure(t *testing.T) {
	ch := &scriptedChannel{
		replies:   []reply{notAttached()},
		attachErr: errors.NewChannelError("cannot attach", errors.ErrNoResponse),
	}

	_, err := newRequester(t, ch, 0).RequestTasks(context.Background(), prTab)
	if !errors.Is(err, errors.ErrNoResponse) {
		t.Errorf("RequestTasks() error = %v, want attach error", err)
	}
	if len(ch.sends) != 1 {
		t.Errorf("sends = %d, want 1", len(ch.sends))
	}
}

func TestRequestTasks_NonQualifyingTabSendsNothing(t *testing.T) {
	ch := &scriptedChannel{replies: []reply{success("ABC-1")}}

	for _, u := range []string{"https://github.com/org/repo/issues/5", "", "https://gitlab.com/a/b/pull/1"} {
		_, err := newRequester(t, ch, 0).RequestTasks(context.Background(), Tab{ID: "t", URL: u})
		if !errors.Is(err, errors.ErrNotPRPage) {
			t.Errorf("RequestTasks(%q) error = %v, want ErrNotPRPage", u, err)
		}
	}
	if len(ch.sends) != 0 {
		t.Errorf("sends = %d, want 0", len(ch.sends))
	}
}

func TestRequestTasks_FailureResponses(t *testing.T) {
	tests := []struct {
		name    string
		resp    extract.Response
		wantErr error
	}{
		{"wrong page", extract.Failure(errors.ErrNotPRPage), errors.ErrNotPRPage},
		{"extraction failed", extract.Failure(errors.ErrExtractionFailed), errors.ErrExtractionFailed},
		{"bare failure", extract.Response{}, errors.ErrExtractionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &scriptedChannel{replies: []reply{{resp: tt.resp}}}
			_, err := newRequester(t, ch, 0).RequestTasks(context.Background(), prTab)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RequestTasks() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestTasks_SuccessWithoutData(t *testing.T) {
	ch := &scriptedChannel{replies: []reply{{resp: extract.Response{Success: true}}}}

	res, err := newRequester(t, ch, 0).RequestTasks(context.Background(), prTab)
	if err != nil {
		t.Fatalf("RequestTasks() error = %v", err)
	}
	if res.TaskIDs == nil || len(res.TaskIDs) != 0 || res.TaskDetails == nil {
		t.Errorf("result = %+v, want empty non-nil result", res)
	}
}

func TestRequestTasks_EndToEndWithBroker(t *testing.T) {
	path := testutil.WritePage(t, "pr.html", testutil.Page(testutil.PRURL,
		testutil.CommitLink("aaa111", "TASK-42 fix bug"),
		testutil.CommitLink("bbb222", "TASK-42 follow up"),
	))

	loader := NewFileLoader("", nil)
	tab, err := OpenTab(context.Background(), loader, path)
	if err != nil {
		t.Fatalf("OpenTab() error = %v", err)
	}
	broker := NewBroker(loader, nil, nil)

	res, err := newRequester(t, broker, 10*time.Millisecond).RequestTasks(context.Background(), tab)
	if err != nil {
		t.Fatalf("RequestTasks() error = %v", err)
	}
	if len(res.TaskIDs) != 1 || res.CommitCount("TASK-42") != 2 {
		t.Errorf("result = %+v", res)
	}
	if !broker.Attached(tab.ID) {
		t.Error("broker should keep the extractor attached after the retry")
	}
}

func TestRequestTasks_CanceledDuringRetryDelay(t *testing.T) {
	ch := &scriptedChannel{replies: []reply{notAttached(), success("ABC-1")}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newRequester(t, ch, time.Second).RequestTasks(ctx, prTab)
	if err == nil {
		t.Fatal("expected error when the context ends during the retry delay")
	}
	if !errors.Is(err, errors.ErrCanceled) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want ErrCanceled wrapping the context error", err)
	}
	if len(ch.sends) != 1 {
		t.Errorf("sends = %d, want 1", len(ch.sends))
	}
}
