package page

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultHost is the only host allowed when none are configured.
const DefaultHost = "github.com"

// tabPathPattern is the path shape of a qualifying tab: owner and repository
// segments followed by /pull/<number>.
var tabPathPattern = regexp.MustCompile(`^/.*/pull/\d+`)

// Qualifier decides whether a tab URL is a pull request page the presenter
// may query.
type Qualifier struct {
	hosts    []string
	patterns []glob.Glob
}

// NewQualifier compiles host patterns. Patterns use glob syntax with '.' as
// the separator, so "*.ghe.example.com" matches exactly one extra label.
// An empty list allows DefaultHost.
func NewQualifier(hosts []string) (*Qualifier, error) {
	if len(hosts) == 0 {
		hosts = []string{DefaultHost}
	}

	q := &Qualifier{}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		g, err := glob.Compile(h, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid host pattern %q: %w", h, err)
		}
		q.hosts = append(q.hosts, h)
		q.patterns = append(q.patterns, g)
	}
	if len(q.patterns) == 0 {
		return nil, fmt.Errorf("no usable host patterns in %v", hosts)
	}
	return q, nil
}

// Hosts returns the normalized host patterns.
func (q *Qualifier) Hosts() []string {
	out := make([]string, len(q.hosts))
	copy(out, q.hosts)
	return out
}

// AllowsHost reports whether host matches one of the patterns.
func (q *Qualifier) AllowsHost(host string) bool {
	host = strings.ToLower(host)
	for _, g := range q.patterns {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// Qualifies reports whether rawURL is an http(s) URL on an allowed host whose
// path has the pull request shape.
func (q *Qualifier) Qualifies(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return q.AllowsHost(u.Hostname()) && tabPathPattern.MatchString(u.EscapedPath())
}
