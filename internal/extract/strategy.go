package extract

import (
	"github.com/Iron-Ham/prtasks/internal/dom"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

// commitLinkSelector matches any anchor pointing at a commit.
const commitLinkSelector = `a[href*="/commit/"]`

// Ordered selector lists. Each list is walked front to back and the first
// match wins; the order is part of the page-compatibility contract.
var (
	// commitContainerSelectors locate the row around a commit link whose
	// own text is a hash. The link's parent is the final fallback.
	commitContainerSelectors = []string{
		`div[data-testid="commit-row"]`,
		`li`,
		`div.Box-row`,
		`div.commit`,
	}

	// containerMessageSelectors locate the human-readable message inside
	// that row.
	containerMessageSelectors = []string{
		commitLinkSelector + ` + span`,
		`.commit-message`,
		`p[class*="commit"]`,
		`span[class*="commit"]`,
		`div[class*="message"]`,
	}

	// commitRowSelectors are the row shapes tried by the commit-row
	// strategy. Only the first shape present on the page is used.
	commitRowSelectors = []string{
		`div[data-testid="commit-row"]`,
		`div[data-testid="commit-row-item"]`,
		`li[data-testid="commit-row-item"]`,
		`div.commit-group li`,
		`li.commit`,
		`div.js-navigation-item[data-testid="commit-row-item"]`,
		`div.Box-row--focus-gray`,
		`div[class*="commit-row"]`,
		`div[class*="CommitRow"]`,
	}

	// rowMessageSelectors locate a message in a row without commit links.
	rowMessageSelectors = []string{
		`.commit-message`,
		`[class*="message"]`,
		`p`,
		`span`,
	}

	// timelineItemSelector matches activity feed entries.
	timelineItemSelector = `div[class*="TimelineItem"]`

	// timelineMessageSelectors locate a message inside a timeline entry.
	timelineMessageSelectors = []string{
		`p`,
		`span[class*="message"]`,
	}
)

// scan is the state shared by the strategies of one extraction pass.
type scan struct {
	doc         dom.Document
	collector   *Collector
	commitLinks int
	logger      *logging.Logger
}

// strategy is one heuristic in the fallback chain.
type strategy struct {
	name string
	// applies decides from the results so far whether the strategy runs.
	applies func(s *scan) bool
	run     func(s *scan)
}

// strategies is the fallback chain, in order.
var strategies = []strategy{
	{
		name:    "commit-link",
		applies: func(*scan) bool { return true },
		run:     scanCommitLinks,
	},
	{
		name:    "commit-row",
		applies: func(s *scan) bool { return s.collector.Len() == 0 || s.commitLinks == 0 },
		run:     scanCommitRows,
	},
	{
		name:    "timeline",
		applies: func(s *scan) bool { return s.collector.Len() == 0 },
		run:     scanTimeline,
	},
}

// firstMatch returns the first node under root matching any selector, trying
// selectors in order.
func firstMatch(root dom.Node, selectors []string) dom.Node {
	for _, sel := range selectors {
		if n := root.Find(sel); n != nil {
			return n
		}
	}
	return nil
}

// firstClosest returns the nearest ancestor of n matching any selector,
// trying selectors in order.
func firstClosest(n dom.Node, selectors []string) dom.Node {
	for _, sel := range selectors {
		if c := n.Closest(sel); c != nil {
			return c
		}
	}
	return nil
}

func textOf(n dom.Node) string {
	if n == nil {
		return ""
	}
	return trim(n.Text())
}

func hrefOf(n dom.Node) string {
	if n == nil {
		return ""
	}
	href, _ := n.Href()
	return href
}

// record adds one candidate message and logs matches.
func (s *scan) record(name, message, url string) {
	if id, ok := s.collector.Add(message, url); ok {
		s.logger.Debug("task matched", "strategy", name, "task_id", id)
	}
}

// scanCommitLinks reads a message for every commit link on the page.
func scanCommitLinks(s *scan) {
	links := s.doc.FindAll(commitLinkSelector)
	s.commitLinks = len(links)

	for _, link := range links {
		s.record("commit-link", commitLinkMessage(link), hrefOf(link))
	}
}

// commitLinkMessage prefers the link text, falling back to the surrounding
// commit row when the link only shows a hash.
func commitLinkMessage(link dom.Node) string {
	message := textOf(link)
	if !needsContainerLookup(message) {
		return message
	}

	container := firstClosest(link, commitContainerSelectors)
	if container == nil {
		container = link.Parent()
	}
	if container == nil {
		return message
	}

	if el := firstMatch(container, containerMessageSelectors); el != nil {
		return textOf(el)
	}
	return trim(container.TextWithout(commitLinkSelector, func(i int, _ dom.Node) bool {
		return i == 0
	}))
}

// scanCommitRows uses the first commit row shape present on the page.
func scanCommitRows(s *scan) {
	for _, sel := range commitRowSelectors {
		rows := s.doc.FindAll(sel)
		if len(rows) == 0 {
			continue
		}
		s.logger.Debug("commit rows found", "selector", sel, "rows", len(rows))
		for _, row := range rows {
			s.record("commit-row", commitRowMessage(row), hrefOf(row.Find(commitLinkSelector)))
		}
		return
	}
}

// commitRowMessage derives a message from one commit row.
func commitRowMessage(row dom.Node) string {
	if link := row.Find(commitLinkSelector); link != nil {
		if next := link.NextElement(); next != nil {
			return textOf(next)
		}
		return trim(row.TextWithout(commitLinkSelector, func(_ int, n dom.Node) bool {
			return looksLikeHash(n.Text())
		}))
	}

	if el := firstMatch(row, rowMessageSelectors); el != nil {
		return textOf(el)
	}
	return textOf(row)
}

// scanTimeline reads commits out of activity feed entries.
func scanTimeline(s *scan) {
	for _, item := range s.doc.FindAll(timelineItemSelector) {
		link := item.Find(commitLinkSelector)
		if link == nil {
			continue
		}

		el := firstMatch(item, timelineMessageSelectors)
		if el == nil {
			el = link.NextElement()
		}

		message := textOf(link)
		if el != nil {
			message = textOf(el)
		}
		s.record("timeline", message, hrefOf(link))
	}
}
