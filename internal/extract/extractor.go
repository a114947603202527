// Package extract finds task IDs at the start of commit messages on a rendered
// pull request page.
//
// Extraction runs three heuristics in a fixed order, each one only when the
// previous ones came up empty:
//
//  1. commit-link: every anchor pointing at a commit, using its text or the
//     surrounding row when the text is only a hash
//  2. commit-row: the first known commit row shape present on the page
//  3. timeline: activity feed entries that contain a commit link
//
// All strategies share one dedup set for the pass, so a message consumed by an
// earlier strategy is never counted twice. Extraction only reads the document.
package extract

import (
	"fmt"
	"time"

	"github.com/Iron-Ham/prtasks/internal/dom"
	"github.com/Iron-Ham/prtasks/internal/errors"
	"github.com/Iron-Ham/prtasks/internal/logging"
)

// Extractor runs the strategy chain over documents. It holds no state
// between calls and is safe for concurrent use.
type Extractor struct {
	logger *logging.Logger
}

// New creates an Extractor. A nil logger discards output.
func New(logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Extractor{logger: logger}
}

// Extract returns the task IDs found in doc. It does not recover from
// panics raised by the document; use TryExtract at trust boundaries.
func (e *Extractor) Extract(doc dom.Document) Result {
	res, _ := e.run(doc, nil)
	return res
}

// TryExtract is Extract behind a failure boundary: a panic anywhere in the
// scan is returned as an *errors.ExtractionError instead of propagating.
func (e *Extractor) TryExtract(doc dom.Document) (res Result, err error) {
	current := ""
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panicked", "strategy", current, "panic", fmt.Sprint(r))
			res = EmptyResult()
			err = errors.NewExtractionError("scan aborted", errors.ErrExtractionFailed).
				WithStrategy(current).
				WithRecovered(r)
		}
	}()

	return e.run(doc, &current)
}

func (e *Extractor) run(doc dom.Document, current *string) (Result, error) {
	if doc == nil {
		return EmptyResult(), nil
	}

	start := time.Now()
	s := &scan{
		doc:       doc,
		collector: NewCollector(),
		logger:    e.logger,
	}

	for _, st := range strategies {
		if !st.applies(s) {
			continue
		}
		if current != nil {
			*current = st.name
		}
		before := s.collector.Seen()
		st.run(s)
		e.logger.Debug("strategy finished",
			"strategy", st.name,
			"messages", s.collector.Seen()-before,
			"task_ids", s.collector.Len(),
		)
	}

	res := s.collector.Result()
	e.logger.Info("extraction complete",
		"task_ids", len(res.TaskIDs),
		"commit_links", s.commitLinks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Extract runs a fresh Extractor without logging.
func Extract(doc dom.Document) Result {
	return New(nil).Extract(doc)
}
