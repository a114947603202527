package dom

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// node adapts a single-element goquery selection to Node.
type node struct {
	sel  *goquery.Selection
	base *url.URL
}

// wrap returns nil (an untyped Node) for empty selections so callers can
// compare against nil.
func wrap(sel *goquery.Selection, base *url.URL) Node {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	return &node{sel: sel.First(), base: base}
}

// Text returns the text content, leaving out <template> contents the way a
// browser's textContent does.
func (n *node) Text() string {
	if n.sel.Find("template").Length() == 0 {
		return n.sel.Text()
	}
	clone := n.sel.Clone()
	clone.Find("template").Remove()
	return clone.Text()
}

func (n *node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n *node) Href() (string, bool) {
	raw, ok := n.sel.Attr("href")
	if !ok {
		return "", false
	}
	return resolve(n.base, raw), true
}

func (n *node) Find(selector string) Node {
	return wrap(rendered(n.sel.Find(selector)), n.base)
}

func (n *node) FindAll(selector string) []Node {
	matches := rendered(n.sel.Find(selector))
	nodes := make([]Node, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &node{sel: s, base: n.base})
	})
	return nodes
}

func (n *node) Closest(selector string) Node {
	return wrap(n.sel.Closest(selector), n.base)
}

func (n *node) Parent() Node {
	return wrap(n.sel.Parent(), n.base)
}

func (n *node) NextElement() Node {
	return wrap(n.sel.Next(), n.base)
}

func (n *node) TextWithout(selector string, remove func(index int, n Node) bool) string {
	clone := n.sel.Clone()
	clone.Find("template").Remove()
	clone.Find(selector).Each(func(i int, s *goquery.Selection) {
		if remove == nil || remove(i, &node{sel: s, base: n.base}) {
			s.Remove()
		}
	})
	return clone.Text()
}

// rendered drops matches inside <template> elements. The HTML parser keeps
// template contents in the tree, but they are inert and querySelector never
// returns them.
func rendered(sel *goquery.Selection) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered("template").Length() == 0
	})
}

// resolve mirrors how browsers expose anchor hrefs: relative references are
// resolved against the document URL, unparsable ones are returned untouched.
func resolve(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

// document is the goquery-backed Document.
type document struct {
	node
	loc *url.URL
}

func (d *document) URL() *url.URL {
	return d.loc
}

// Parse reads HTML from r. pageURL is the location the markup was loaded
// from; it may be empty when unknown. A <base href> in the markup takes
// precedence for resolving links, as it does in a browser.
func Parse(r io.Reader, pageURL string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var loc *url.URL
	if pageURL != "" {
		loc, err = url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
	}

	base := loc
	if href, ok := doc.Find("head base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			if base != nil {
				base = base.ResolveReference(ref)
			} else if ref.IsAbs() {
				base = ref
			}
		}
	}

	return &document{
		node: node{sel: doc.Selection, base: base},
		loc:  loc,
	}, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(markup, pageURL string) (Document, error) {
	return Parse(strings.NewReader(markup), pageURL)
}

// CanonicalURL returns the page's self-declared location from
// <link rel="canonical"> or <meta property="og:url">, in that order.
// Saved pages carry these, which lets a file stand in for a live tab.
func CanonicalURL(doc Document) (string, bool) {
	if link := doc.Find(`link[rel="canonical"][href]`); link != nil {
		if href, ok := link.Href(); ok && href != "" {
			return href, true
		}
	}
	if meta := doc.Find(`meta[property="og:url"][content]`); meta != nil {
		if content, ok := meta.Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content), true
		}
	}
	return "", false
}
