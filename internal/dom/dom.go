// Package dom is the read-only document query layer the extractor runs against.
//
// The extractor only needs a handful of DOM operations: find elements by CSS
// selector, walk to an ancestor, parent or next sibling, read text content and
// attributes, and read text from a detached copy with some descendants removed.
// [Node] captures exactly that surface so extraction can run over any tree.
// [Parse] builds the production implementation on top of goquery.
//
// Lookups never fail: a selector that matches nothing (or does not compile)
// yields nil or an empty slice, and text of a missing node is the empty string.
package dom

import "net/url"

// Node is one element of a parsed document.
type Node interface {
	// Text returns the concatenated text of the node and all descendants,
	// like the DOM textContent property.
	Text() string

	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)

	// Href returns the node's href attribute resolved against the document
	// URL, like HTMLAnchorElement.href.
	Href() (string, bool)

	// Find returns the first descendant matching selector, or nil.
	Find(selector string) Node

	// FindAll returns every descendant matching selector in document order.
	FindAll(selector string) []Node

	// Closest returns the node itself or its nearest ancestor matching
	// selector, or nil.
	Closest(selector string) Node

	// Parent returns the parent element, or nil at the root.
	Parent() Node

	// NextElement returns the next sibling element, or nil.
	NextElement() Node

	// TextWithout returns the text of a detached copy of the node from which
	// descendants matching selector have been removed. remove is called with
	// each match's position among the matches and decides whether it goes;
	// a nil remove drops every match.
	TextWithout(selector string, remove func(index int, n Node) bool) string
}

// Document is a parsed page together with the URL it was loaded from.
type Document interface {
	Node

	// URL is the page location. It may be nil when the origin is unknown.
	URL() *url.URL
}
