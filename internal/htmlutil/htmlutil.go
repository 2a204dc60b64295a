// Package htmlutil provides shared HTML parsing and rendering helpers for
// the fragment pipeline, built on golang.org/x/net/html.
package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses HTML content, handling both full documents and fragments.
// Returns the parsed node and whether the input was a fragment.
func Parse(content string) (*html.Node, bool, error) {
	trimmed := strings.TrimSpace(content)

	// Full document: starts with <!DOCTYPE or <html
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// Render renders the document back to a string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func Render(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute on n.
func SetAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// Walk visits n and all its descendants in document order.
// Returning false from fn stops descent into the current node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Text collects the concatenated text content of n and its descendants.
func Text(n *html.Node) string {
	var buf strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		return true
	})
	return buf.String()
}

// HeadingLevel returns the heading level for h1..h6 elements, or 0 if n is
// not a heading element.
func HeadingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// NormalizeToken lower-cases and collapses all whitespace runs to single
// spaces. Anchor lookup tokens are compared in this form.
func NormalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Slugify converts text to a lowercase hyphen-separated identifier suitable
// for element ids. Non-alphanumeric runs collapse to single hyphens.
func Slugify(s string) string {
	var buf strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			buf.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				buf.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(buf.String(), "-")
}
