package page

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

// DefaultRetryDelay is the wait between attaching an extractor and resending.
const DefaultRetryDelay = 500 * time.Millisecond

// Requester performs the presenter side of one getTasks exchange.
type Requester struct {
	Channel    Channel
	Qualifier  *Qualifier
	RetryDelay time.Duration
	Logger     *logging.Logger
}

// RequestTasks asks the extractor on tab for its task IDs.
//
// The tab must qualify before anything is sent. A first send that finds no
// extractor attaches one, waits RetryDelay and sends exactly once more.
// A failure response becomes an error; ErrNotPRPage is preserved so callers
// can tell a wrong page from a broken one.
func (r *Requester) RequestTasks(ctx context.Context, tab Tab) (extract.Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	if r.Qualifier == nil || !r.Qualifier.Qualifies(tab.URL) {
		logger.Info("tab does not qualify", "tab", tab.ID, "url", tab.URL)
		return extract.Result{}, errors.NewPageError("tab is not a pull request page", errors.ErrNotPRPage).WithURL(tab.URL)
	}

	req := extract.Request{ID: uuid.NewString(), Action: extract.ActionGetTasks}
	logger = logger.WithRequest(req.ID)

	resp, err := r.Channel.Send(ctx, tab, req)
	if errors.Is(err, errors.ErrNotAttached) {
		logger.Debug("extractor not attached, attaching", "tab", tab.ID)
		if attachErr := r.Channel.Attach(ctx, tab); attachErr != nil {
			return extract.Result{}, attachErr
		}
		if waitErr := sleep(ctx, r.retryDelay()); waitErr != nil {
			return extract.Result{}, errors.NewChannelError("retry canceled", errors.Join(errors.ErrCanceled, waitErr)).WithTab(tab.ID).WithAttempt(2)
		}
		resp, err = r.Channel.Send(ctx, tab, req)
		var chErr *errors.ChannelError
		if errors.As(err, &chErr) {
			chErr.WithAttempt(2)
		}
	}
	if err != nil {
		logger.Warn("request failed",
			"tab", tab.ID,
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String(),
			"retryable", errors.IsRetryable(err),
		)
		return extract.Result{}, err
	}

	return responseResult(resp)
}

func (r *Requester) retryDelay() time.Duration {
	if r.RetryDelay < 0 {
		return 0
	}
	return r.RetryDelay
}

// responseResult unpacks a response envelope.
func responseResult(resp extract.Response) (extract.Result, error) {
	if !resp.Success {
		if resp.Error == errors.ErrNotPRPage.Error() {
			return extract.Result{}, errors.ErrNotPRPage
		}
		msg := resp.Error
		if msg == "" {
			msg = "request failed"
		}
		return extract.Result{}, errors.NewExtractionError(msg, errors.ErrExtractionFailed)
	}
	if resp.Data == nil {
		return extract.EmptyResult(), nil
	}
	res := *resp.Data
	if res.TaskIDs == nil {
		res.TaskIDs = []string{}
	}
	if res.TaskDetails == nil {
		res.TaskDetails = map[string]*extract.TaskRecord{}
	}
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
