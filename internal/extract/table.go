// Package extract pulls the raw case table and the last-updated banner out of
// the source page.
package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/casefeed/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoTable is returned when the document contains no <table>
var ErrNoTable = errors.New("no table element in document")

// headerSpacing removes visual spacing the page puts inside header labels
var headerSpacing = strings.NewReplacer(" ", "", "\u00a0", "", "\u3000", "")

// Parse parses an HTML document
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ExtractTable returns the first table of doc as a RawTable.
// Each <tr> becomes a row of its td/th texts; spaces are removed from
// header cells only.
func ExtractTable(doc *html.Node) (model.RawTable, error) {
	table := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Table
	})
	if table == nil {
		return nil, ErrNoTable
	}

	var raw model.RawTable
	for _, tr := range findAll(table, isElement(atom.Tr)) {
		var cells []string
		for _, cell := range findAll(tr, isCell) {
			text := Text(cell)
			if len(raw) == 0 {
				text = headerSpacing.Replace(text)
			}
			cells = append(cells, text)
		}
		raw = append(raw, cells)
	}

	return raw, nil
}

// ExtractTableString parses htmlContent and returns its first table
func ExtractTableString(htmlContent string) (model.RawTable, error) {
	doc, err := Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}
	return ExtractTable(doc)
}

// Text concatenates all descendant text of n verbatim
func Text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(Text(c))
	}
	return buf.String()
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func isCell(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th)
}

// findAll finds all nodes matching a predicate, in document order
func findAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// findFirst finds the first node matching a predicate
func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}
