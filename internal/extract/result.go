package extract

import (
	"encoding/json"
	"sort"
)

// CommitRef is one commit that contributed to a task.
type CommitRef struct {
	Message string `json:"message" yaml:"message"`
	// URL is empty when the commit had no link.
	URL string `json:"url" yaml:"url,omitempty"`
}

// MarshalJSON encodes a missing URL as null.
func (c CommitRef) MarshalJSON() ([]byte, error) {
	var u *string
	if c.URL != "" {
		u = &c.URL
	}
	return json.Marshal(struct {
		Message string  `json:"message"`
		URL     *string `json:"url"`
	}{c.Message, u})
}

// UnmarshalJSON accepts null or a string URL.
func (c *CommitRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message string  `json:"message"`
		URL     *string `json:"url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Message = raw.Message
	c.URL = ""
	if raw.URL != nil {
		c.URL = *raw.URL
	}
	return nil
}

// TaskRecord groups the commits referencing one task ID, in the order they
// were first seen on the page.
type TaskRecord struct {
	ID      string      `json:"id" yaml:"id"`
	Commits []CommitRef `json:"commits" yaml:"commits"`
}

// Result is the outcome of one extraction pass.
type Result struct {
	// TaskIDs is sorted ascending and free of duplicates.
	TaskIDs     []string               `json:"taskIds" yaml:"taskIds"`
	TaskDetails map[string]*TaskRecord `json:"taskDetails" yaml:"taskDetails"`
}

// EmptyResult returns a Result with no tasks that still encodes as
// {"taskIds": [], "taskDetails": {}}.
func EmptyResult() Result {
	return Result{TaskIDs: []string{}, TaskDetails: map[string]*TaskRecord{}}
}

// CommitCount returns how many commits reference id.
func (r Result) CommitCount(id string) int {
	if rec, ok := r.TaskDetails[id]; ok && rec != nil {
		return len(rec.Commits)
	}
	return 0
}

// Collector accumulates task records across strategies. It owns the dedup
// set for one pass; build a new one per extraction.
type Collector struct {
	seen    map[string]struct{}
	details map[string]*TaskRecord
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		seen:    make(map[string]struct{}),
		details: make(map[string]*TaskRecord),
	}
}

// Add normalizes raw and records it. Empty and already-seen messages are
// ignored. A message that passes dedup is marked seen whether or not it
// carries a task ID. The returned ID is empty when nothing was recorded.
func (c *Collector) Add(raw, url string) (string, bool) {
	msg := NormalizeMessage(raw)
	if msg == "" {
		return "", false
	}
	if _, dup := c.seen[msg]; dup {
		return "", false
	}
	c.seen[msg] = struct{}{}

	id, ok := MatchTaskID(msg)
	if !ok {
		return "", false
	}

	rec, exists := c.details[id]
	if !exists {
		rec = &TaskRecord{ID: id, Commits: []CommitRef{}}
		c.details[id] = rec
	}
	rec.Commits = append(rec.Commits, CommitRef{Message: msg, URL: url})
	return id, true
}

// Len returns the number of distinct task IDs collected so far.
func (c *Collector) Len() int {
	return len(c.details)
}

// Seen returns the number of distinct messages processed so far.
func (c *Collector) Seen() int {
	return len(c.seen)
}

// Result snapshots the collected records. TaskIDs is derived from the
// detail keys, so the two can never disagree.
func (c *Collector) Result() Result {
	res := EmptyResult()
	for id, rec := range c.details {
		res.TaskIDs = append(res.TaskIDs, id)
		commits := make([]CommitRef, len(rec.Commits))
		copy(commits, rec.Commits)
		res.TaskDetails[id] = &TaskRecord{ID: rec.ID, Commits: commits}
	}
	sort.Strings(res.TaskIDs)
	return res
}
