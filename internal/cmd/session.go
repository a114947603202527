package cmd

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/extract"
	"github.com/Iron-Ham/prtasks/internal/page"
)

// pageSession ties a target to the loader, broker and requester serving it.
type pageSession struct {
	tab       page.Tab
	loader    page.Loader
	broker    *page.Broker
	requester *page.Requester
}

// openPage opens target as a tab and wires a requester to it.
// urlOverride sets the location of a saved page.
func (c *cli) openPage(ctx context.Context, target, urlOverride string) (*pageSession, error) {
	qualifier, err := page.NewQualifier(c.cfg.Page.Hosts)
	if err != nil {
		return nil, err
	}

	loader := page.NewLoader(page.Options{
		UserAgent:         c.cfg.Page.UserAgent,
		Timeout:           c.cfg.Page.Timeout(),
		RequestsPerSecond: c.cfg.Page.RequestsPerSecond,
		URLOverride:       urlOverride,
		Hosts:             qualifier,
		Logger:            c.logger,
	})

	tab, err := page.OpenTab(ctx, loader, target)
	if err != nil {
		return nil, err
	}
	logger := c.logger.WithPage(tab.URL)
	logger.Info("opened page", "tab", tab.ID, "target", target)

	broker := page.NewBroker(loader, extract.New(logger), c.logger)
	return &pageSession{
		tab:    tab,
		loader: loader,
		broker: broker,
		requester: &page.Requester{
			Channel:    broker,
			Qualifier:  qualifier,
			RetryDelay: c.cfg.TUI.RetryDelay(),
			Logger:     logger,
		},
	}, nil
}

// attach places an extractor on the tab ahead of the first request, the way
// a page that was loaded after installation already carries one.
func (s *pageSession) attach(ctx context.Context) error {
	return s.broker.Attach(ctx, s.tab)
}

// request runs one getTasks exchange.
func (s *pageSession) request(ctx context.Context) (extract.Result, error) {
	res, err := s.requester.RequestTasks(ctx, s.tab)
	if err != nil {
		return res, explain(s.tab, err)
	}
	return res, nil
}

// relocate refreshes the tab's location from a saved page after it changed.
func (s *pageSession) relocate(ctx context.Context) {
	if page.IsRemote(s.tab.Target) {
		return
	}
	fresh, err := page.OpenTab(ctx, s.loader, s.tab.Target)
	if err == nil {
		s.tab.URL = fresh.URL
	}
}

// explain adds a hint for the most common wrong-page mistake.
func explain(tab page.Tab, err error) error {
	if !errors.Is(err, errors.ErrNotPRPage) {
		return err
	}
	if tab.URL == "" {
		return fmt.Errorf("%w: %s has no page address; pass --url with the pull request URL", err, tab.Target)
	}
	return fmt.Errorf("%w: %s", err, tab.URL)
}
