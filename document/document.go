// Package document adapts an HTML parser to the small set of queries the
// listing parser and content extractor need.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is a parsed HTML document or an element within one.
type Node interface {
	// FindContainer returns the first descendant matching selector.
	FindContainer(selector string) (Node, bool)
	// FindAll returns every descendant matching any of the selectors, in
	// document order.
	FindAll(selectors ...string) []Node
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)
	// Text returns the combined text of the node and its descendants.
	Text() string
}

// selectionNode implements Node on top of a goquery selection.
type selectionNode struct {
	sel *goquery.Selection
}

// Parse reads an HTML document.
func Parse(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &selectionNode{sel: doc.Selection}, nil
}

// ParseBytes reads an HTML document from a byte slice.
func ParseBytes(body []byte) (Node, error) {
	return Parse(bytes.NewReader(body))
}

// ParseString reads an HTML document from a string.
func ParseString(html string) (Node, error) {
	return Parse(strings.NewReader(html))
}

func (n *selectionNode) FindContainer(selector string) (Node, bool) {
	if selector == "" {
		return nil, false
	}
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return &selectionNode{sel: found}, true
}

func (n *selectionNode) FindAll(selectors ...string) []Node {
	if len(selectors) == 0 {
		return nil
	}

	// A selector group keeps matches in document order across all tags
	found := n.sel.Find(strings.Join(selectors, ", "))
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &selectionNode{sel: s})
	})
	return nodes
}

func (n *selectionNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n *selectionNode) Text() string {
	return n.sel.Text()
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims
// the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
