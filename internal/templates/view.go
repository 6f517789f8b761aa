// Package templates maps the canonical resume record onto interchangeable visual layouts.
package templates

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is one element of a rendered view tree
type Node struct {
	Tag      string `json:"tag"`
	Class    string `json:"class,omitempty"`
	Text     string `json:"text,omitempty"`
	Children []Node `json:"children,omitempty"`
}

func el(tag, class string, children ...Node) Node {
	return Node{Tag: tag, Class: class, Children: children}
}

func text(tag, class, s string) Node {
	return Node{Tag: tag, Class: class, Text: s}
}

// PlainText flattens the tree into one line per text-bearing node
func (n Node) PlainText() string {
	var lines []string
	var walk func(Node)
	walk = func(cur Node) {
		if cur.Text != "" {
			lines = append(lines, cur.Text)
		}
		for _, child := range cur.Children {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(lines, "\n")
}

// HTML serializes the tree. Text is escaped by the html renderer.
func (n Node) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n.toHTML()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n Node) toHTML() *html.Node {
	tag := n.Tag
	if tag == "" {
		tag = "div"
	}
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if n.Class != "" {
		node.Attr = []html.Attribute{{Key: "class", Val: n.Class}}
	}
	if n.Text != "" {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text})
	}
	for _, child := range n.Children {
		node.AppendChild(child.toHTML())
	}
	return node
}
