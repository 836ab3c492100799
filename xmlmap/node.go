// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package xmlmap converts between repository XML documents and plain
// Go maps.  It understands a generic element tree (Node), RDF/XML as
// used in RELS-EXT datastreams, and OAI Dublin Core.
//
// Repository XML is namespaced differently between server versions,
// so most lookups here match on local element names only.
package xmlmap

import (
	"bytes"
	"encoding/xml"
)

// Node is one element of a parsed XML document.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []Node     `xml:",any"`
}

// Parse parses an XML document into a tree of Nodes, returning the
// root element.
func Parse(data []byte) (*Node, error) {
	var root Node
	decoder := xml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Local returns the element's name without its namespace.
func (n *Node) Local() string {
	return n.XMLName.Local
}

// Attr returns the value of the attribute with the given local name,
// in any namespace.
func (n *Node) Attr(local string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// AttrNS returns the value of the attribute with the given namespace
// and local name.
func (n *Node) AttrNS(space, local string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name.Space == space && attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// Children returns the direct children of n.  If local is non-empty,
// only children with that local name are returned.
func (n *Node) Children(local string) []*Node {
	var result []*Node
	for i := range n.Nodes {
		if local == "" || n.Nodes[i].XMLName.Local == local {
			result = append(result, &n.Nodes[i])
		}
	}
	return result
}

// Find returns every descendant of n (not including n itself) with
// the given local name, in document order.
func (n *Node) Find(local string) []*Node {
	var result []*Node
	for i := range n.Nodes {
		child := &n.Nodes[i]
		if child.XMLName.Local == local {
			result = append(result, child)
		}
		result = append(result, child.Find(local)...)
	}
	return result
}

// FindText returns the text of the first descendant with the given
// local name.
func (n *Node) FindText(local string) (string, bool) {
	found := n.Find(local)
	if len(found) == 0 {
		return "", false
	}
	return found[0].Text, true
}

// escape writes s to buf with XML special characters escaped.
func escape(buf *bytes.Buffer, s string) {
	// EscapeText only fails if the writer does; bytes.Buffer
	// never does.
	_ = xml.EscapeText(buf, []byte(s))
}
