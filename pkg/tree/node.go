package tree

import "strings"

// Node is one element of a parsed project document.
// A nil *Node is valid for every lookup and behaves like an empty element.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// New creates a node with the given tag and attribute pairs (name, value, name, value, ...).
func New(tag string, attrs ...string) *Node {
	n := &Node{Tag: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.SetAttr(attrs[i], attrs[i+1])
	}
	return n
}

// Add appends children and returns the receiver, so trees can be built inline.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Child returns the first child with the given tag.
func (n *Node) Child(tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// All returns every child with the given tag, in document order.
func (n *Node) All(tag string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of first-match children.
func (n *Node) Path(tags ...string) *Node {
	cur := n
	for _, t := range tags {
		cur = cur.Child(t)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Has reports whether a direct child with the tag exists.
func (n *Node) Has(tag string) bool {
	return n.Child(tag) != nil
}

// Attr returns the attribute value or fallback when missing.
func (n *Node) Attr(name, fallback string) string {
	if n == nil {
		return fallback
	}
	if v, ok := n.Attrs[name]; ok {
		return v
	}
	return fallback
}

// TextContent returns the trimmed character data of the node.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

// Elements returns all children; nil for a nil node.
func (n *Node) Elements() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}
