// Package testutil provides HTML page fixtures for prtasks tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/prtasks/internal/dom"
)

// PRURL is the default location used for pull request fixtures.
const PRURL = "https://github.com/acme/widgets/pull/42"

// Page wraps body markup in a minimal HTML document. A non-empty canonical
// URL is emitted as <link rel="canonical">.
func Page(canonical string, body ...string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head><title>fixture</title>")
	if canonical != "" {
		fmt.Fprintf(&sb, `<link rel="canonical" href="%s">`, canonical)
	}
	sb.WriteString("</head><body>\n")
	for _, b := range body {
		sb.WriteString(b)
		sb.WriteString("\n")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// CommitLink renders an anchor to a commit of the fixture repository.
func CommitLink(sha, text string) string {
	return fmt.Sprintf(`<a href="/acme/widgets/commit/%s">%s</a>`, sha, text)
}

// CommitRow renders a modern commit row: a hash link followed by a message span.
func CommitRow(sha, message string) string {
	return fmt.Sprintf(`<div data-testid="commit-row">%s<span>%s</span></div>`, CommitLink(sha, sha[:7]), message)
}

// TimelineItem renders an activity feed entry holding one commit.
func TimelineItem(sha, message string) string {
	return fmt.Sprintf(`<div class="TimelineItem-body">%s<p>%s</p></div>`, CommitLink(sha, sha[:7]), message)
}

// ParseDoc parses a fixture page located at pageURL.
func ParseDoc(t *testing.T, markup, pageURL string) dom.Document {
	t.Helper()

	doc, err := dom.ParseString(markup, pageURL)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}

// WritePage writes markup to name inside a temporary directory and returns
// the file path. The directory is removed when the test completes.
func WritePage(t *testing.T, name, markup string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(markup), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
