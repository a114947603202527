package page

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

// Tab is one open page the presenter can query.
type Tab struct {
	ID string
	// URL is the page location, empty when it could not be determined.
	URL string
	// Target is what the loader reads the page from.
	Target string
}

// OpenTab creates a tab for target. Remote targets are their own location;
// saved files are loaded once to find theirs.
func OpenTab(ctx context.Context, loader Loader, target string) (Tab, error) {
	tab := Tab{ID: uuid.NewString(), Target: target}
	if IsRemote(target) {
		tab.URL = target
		return tab, nil
	}

	doc, err := loader.Load(ctx, target)
	if err != nil {
		return Tab{}, err
	}
	if loc := doc.URL(); loc != nil {
		tab.URL = loc.String()
	}
	return tab, nil
}

// Channel delivers requests to the extractor attached to a tab.
type Channel interface {
	// Send delivers req and waits for the answer. It fails with an error
	// matching errors.ErrNotAttached when no extractor listens on the tab.
	Send(ctx context.Context, tab Tab, req extract.Request) (extract.Response, error)

	// Attach starts an extractor on the tab. Attaching twice is a no-op.
	Attach(ctx context.Context, tab Tab) error
}

// Broker is the in-process Channel. Each attached tab gets an agent that
// reloads the page for every request, so answers always reflect the page as
// it is now.
type Broker struct {
	loader    Loader
	extractor *extract.Extractor
	logger    *logging.Logger

	mu     sync.RWMutex
	agents map[string]*agent
}

// NewBroker creates a Broker loading pages through loader.
func NewBroker(loader Loader, extractor *extract.Extractor, logger *logging.Logger) *Broker {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if extractor == nil {
		extractor = extract.New(logger)
	}
	return &Broker{
		loader:    loader,
		extractor: extractor,
		logger:    logger,
		agents:    make(map[string]*agent),
	}
}

// Attach implements Channel.
func (b *Broker) Attach(ctx context.Context, tab Tab) error {
	if err := ctx.Err(); err != nil {
		return errors.NewChannelError("attach canceled", err).WithTab(tab.ID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.agents[tab.ID]; ok {
		return nil
	}
	b.agents[tab.ID] = &agent{
		tab:       tab,
		loader:    b.loader,
		extractor: b.extractor,
		logger:    b.logger.With("tab", tab.ID).WithPage(tab.URL),
	}
	b.logger.Debug("extractor attached", "tab", tab.ID, "url", tab.URL)
	return nil
}

// Detach removes the tab's extractor, if any.
func (b *Broker) Detach(tabID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.agents, tabID)
}

// Attached reports whether an extractor listens on the tab.
func (b *Broker) Attached(tabID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.agents[tabID]
	return ok
}

// Send implements Channel.
func (b *Broker) Send(ctx context.Context, tab Tab, req extract.Request) (extract.Response, error) {
	if err := ctx.Err(); err != nil {
		return extract.Response{}, errors.NewChannelError("send canceled", err).WithTab(tab.ID)
	}

	b.mu.RLock()
	a := b.agents[tab.ID]
	b.mu.RUnlock()

	if a == nil {
		return extract.Response{}, errors.NewChannelError("could not establish connection", errors.ErrNotAttached).WithTab(tab.ID)
	}

	resp, handled, err := a.serve(ctx, req)
	if err != nil {
		return extract.Response{}, err
	}
	if !handled {
		// Only unknown actions go unanswered.
		return extract.Response{}, errors.NewChannelError(fmt.Sprintf("action %q not answered", req.Action),
			errors.Join(errors.ErrNoResponse, errors.ErrUnknownAction)).WithTab(tab.ID)
	}
	return resp, nil
}

// agent is the extractor side of one attached tab.
type agent struct {
	tab       Tab
	loader    Loader
	extractor *extract.Extractor
	logger    *logging.Logger
}

// serve answers one request. Unknown actions are left unanswered.
func (a *agent) serve(ctx context.Context, req extract.Request) (extract.Response, bool, error) {
	if req.Action != extract.ActionGetTasks {
		a.logger.Debug("ignoring request", "action", req.Action)
		return extract.Response{}, false, nil
	}

	// The page location is known before loading; a tab that moved off a
	// pull request answers without touching the page.
	if !extract.IsPRPath(tabPath(a.tab.URL)) {
		return extract.Failure(errors.ErrNotPRPage), true, nil
	}

	doc, err := a.loader.Load(ctx, a.tab.Target)
	if err != nil {
		a.logger.Warn("page load failed", "target", a.tab.Target, "error", err.Error())
		return extract.Response{}, true, err
	}

	resp, handled := a.extractor.Handle(doc, req)
	return resp, handled, nil
}

func tabPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}
