package dom

import (
	"strings"
	"testing"
)

const fixture = `<html><head><title>t</title></head><body>
<div id="row" class="Box-row">
  <a id="hash" href="/o/r/pull/7/commits/abc1234">abc1234</a><span class="msg">ABC-1 fix</span>
  <a id="other" href="https://example.com/x">other</a>
</div>
<p id="lonely">alone</p>
</body></html>`

func mustParse(t *testing.T, markup, pageURL string) Document {
	t.Helper()
	doc, err := ParseString(markup, pageURL)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	return doc
}

func TestFind_MissingReturnsNil(t *testing.T) {
	doc := mustParse(t, fixture, "")

	if doc.Find("table") != nil {
		t.Error("Find(table) should be nil")
	}
	if got := doc.FindAll("table"); len(got) != 0 {
		t.Errorf("FindAll(table) = %d nodes, want 0", len(got))
	}
	// Invalid selectors match nothing rather than failing.
	if doc.Find("a[[") != nil {
		t.Error("Find with invalid selector should be nil")
	}
	if doc.Find("#lonely").NextElement() != nil {
		t.Error("NextElement of last element should be nil")
	}
}

func TestHref_ResolvesAgainstPageURL(t *testing.T) {
	tests := []struct {
		name    string
		pageURL string
		want    string
	}{
		{"relative with page url", "https://github.com/o/r/pull/7", "https://github.com/o/r/pull/7/commits/abc1234"},
		{"no page url", "", "/o/r/pull/7/commits/abc1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, fixture, tt.pageURL)
			href, ok := doc.Find("#hash").Href()
			if !ok {
				t.Fatal("Href() ok = false")
			}
			if href != tt.want {
				t.Errorf("Href() = %q, want %q", href, tt.want)
			}
		})
	}

	doc := mustParse(t, fixture, "")
	if _, ok := doc.Find("#row").Href(); ok {
		t.Error("Href() on element without href should report false")
	}
}

func TestHref_BaseElement(t *testing.T) {
	markup := `<html><head><base href="https://ghe.example.com/"></head><body><a href="o/r/commit/1">x</a></body></html>`
	doc := mustParse(t, markup, "")

	href, _ := doc.Find("a").Href()
	if href != "https://ghe.example.com/o/r/commit/1" {
		t.Errorf("Href() = %q", href)
	}
}

func TestTraversal(t *testing.T) {
	doc := mustParse(t, fixture, "")
	link := doc.Find("#hash")

	if next := link.NextElement(); next == nil || strings.TrimSpace(next.Text()) != "ABC-1 fix" {
		t.Errorf("NextElement() text = %v", next)
	}
	if row := link.Closest("div.Box-row"); row == nil {
		t.Error("Closest(div.Box-row) = nil")
	} else if id, _ := row.Attr("id"); id != "row" {
		t.Errorf("Closest id = %q, want row", id)
	}
	if self := link.Closest("a"); self == nil {
		t.Error("Closest should match the node itself")
	}
	if parent := link.Parent(); parent == nil {
		t.Error("Parent() = nil")
	} else if id, _ := parent.Attr("id"); id != "row" {
		t.Errorf("Parent id = %q, want row", id)
	}
	if got := doc.FindAll("a"); len(got) != 2 {
		t.Errorf("FindAll(a) = %d, want 2", len(got))
	}
}

func TestSiblingCombinatorInsideScope(t *testing.T) {
	doc := mustParse(t, fixture, "")
	row := doc.Find("#row")

	span := row.Find(`a[href*="/commit"] + span`)
	if span == nil || span.Text() != "ABC-1 fix" {
		t.Errorf("sibling combinator lookup = %v", span)
	}
}

func TestTextWithout(t *testing.T) {
	doc := mustParse(t, fixture, "")
	row := doc.Find("#row")

	all := strings.Join(strings.Fields(row.TextWithout("a", nil)), " ")
	if all != "ABC-1 fix" {
		t.Errorf("TextWithout(a, nil) = %q", all)
	}

	firstOnly := strings.Join(strings.Fields(row.TextWithout("a", func(i int, _ Node) bool { return i == 0 })), " ")
	if firstOnly != "ABC-1 fix other" {
		t.Errorf("TextWithout(first) = %q", firstOnly)
	}

	// The live tree is untouched.
	if doc.Find("#hash") == nil {
		t.Error("TextWithout mutated the document")
	}
}

func TestTemplateContentIsInert(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="box">
<template><a class="c" href="/o/r/commit/aaa">hidden</a></template>
<a class="c" href="/o/r/commit/bbb">shown</a>
</div></body></html>`, "https://github.com/o/r/pull/1")

	links := doc.FindAll("a.c")
	if len(links) != 1 {
		t.Fatalf("FindAll(a.c) = %d nodes, want 1", len(links))
	}
	if got := links[0].Text(); got != "shown" {
		t.Errorf("FindAll(a.c)[0].Text() = %q, want shown", got)
	}
	if got := doc.Find("a.c").Text(); got != "shown" {
		t.Errorf("Find(a.c).Text() = %q, want shown", got)
	}

	box := doc.Find("#box")
	if strings.Contains(box.Text(), "hidden") {
		t.Errorf("Text() includes template content: %q", box.Text())
	}
	if got := box.TextWithout("a", nil); strings.Contains(got, "hidden") || strings.Contains(got, "shown") {
		t.Errorf("TextWithout(a) = %q", got)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
		ok     bool
	}{
		{
			name:   "canonical link",
			markup: `<html><head><link rel="canonical" href="https://github.com/o/r/pull/3"></head></html>`,
			want:   "https://github.com/o/r/pull/3",
			ok:     true,
		},
		{
			name:   "og url",
			markup: `<html><head><meta property="og:url" content=" https://github.com/o/r/pull/4 "></head></html>`,
			want:   "https://github.com/o/r/pull/4",
			ok:     true,
		},
		{
			name:   "none",
			markup: `<html><head></head></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalURL(mustParse(t, tt.markup, ""))
			if got != tt.want || ok != tt.ok {
				t.Errorf("CanonicalURL() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParse_InvalidPageURL(t *testing.T) {
	if _, err := ParseString("<p>x</p>", "http://[::1"); err == nil {
		t.Error("expected error for invalid page URL")
	}
}
