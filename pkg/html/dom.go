package html

import (
	"strings"
)

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

type Document struct {
	Root        *Node
	Stylesheets []string // raw CSS from <style> tags
	Scripts     []string // JavaScript from <script> tags
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  "document",
			Children: make([]*Node, 0),
		},
		Stylesheets: make([]string, 0),
		Scripts:     make([]string, 0),
	}
}

// NewElement creates a detached element node with an empty attribute set.
func NewElement(tag string) *Node {
	return &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string),
		Children:   make([]*Node, 0),
	}
}

func (n *Node) IsElement() bool {
	return n != nil && n.Type == ElementNode
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

func (n *Node) RemoveAttribute(name string) {
	if n.Attributes != nil {
		delete(n.Attributes, name)
	}
}

// HasClass reports whether the class attribute lists cls.
func (n *Node) HasClass(cls string) bool {
	classes, ok := n.GetAttribute("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if c == cls {
			return true
		}
	}
	return false
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(&Node{Type: TextNode, Text: text})
}

// RemoveChild detaches child and returns it, or nil if child is not ours.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// InsertBefore inserts newChild before refChild. A nil or foreign refChild
// appends. newChild is detached from any previous parent first.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}
	idx := -1
	if refChild != nil {
		for i, c := range n.Children {
			if c == refChild {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		n.AddChild(newChild)
		return newChild
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[idx+1:], n.Children[idx:])
	n.Children[idx] = newChild
	newChild.Parent = n
	return newChild
}

// ReplaceWith puts other where n is in the tree and detaches n.
func (n *Node) ReplaceWith(other *Node) {
	parent := n.Parent
	if parent == nil || other == n {
		return
	}
	parent.InsertBefore(other, n)
	parent.RemoveChild(n)
}

// Wrap places wrapper at n's position and moves n inside it as the last child.
// A detached n simply becomes the wrapper's child.
func (n *Node) Wrap(wrapper *Node) {
	if n.Parent != nil {
		n.Parent.InsertBefore(wrapper, n)
	}
	wrapper.AddChild(n)
}

// Unwrap reverses Wrap: n takes its parent's place and the parent is
// detached. It reports false when n has no parent to step out of.
func (n *Node) Unwrap() bool {
	wrapper := n.Parent
	if wrapper == nil {
		return false
	}
	if wrapper.Parent == nil {
		wrapper.RemoveChild(n)
		return true
	}
	wrapper.ReplaceWith(n)
	return true
}

// Contains returns true if other is a descendant of n (or n itself).
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// IndexInParent returns the index of this node among its parent's children,
// or -1 if it has no parent.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Closest walks from n's parent upwards and returns the first ancestor
// matching pred.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the subtree below the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			sb.WriteString(c.Text)
		}
		return true
	})
	return sb.String()
}

// FindByID returns the first element under n with a matching id.
func (n *Node) FindByID(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.IsElement() {
			if v, ok := c.GetAttribute("id"); ok && v == id {
				found = c
				return false
			}
		}
		return true
	})
	return found
}

// FindAll returns every element under n, in document order, matching pred.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var result []*Node
	n.Walk(func(c *Node) bool {
		if c.IsElement() && pred(c) {
			result = append(result, c)
		}
		return true
	})
	return result
}

func (n *Node) ElementsByTagName(tag string) []*Node {
	tag = strings.ToLower(tag)
	return n.FindAll(func(c *Node) bool { return c != n && c.TagName == tag })
}

func (n *Node) ElementsByClassName(cls string) []*Node {
	return n.FindAll(func(c *Node) bool { return c != n && c.HasClass(cls) })
}

func (n *Node) ElementsWithAttribute(name string) []*Node {
	return n.FindAll(func(c *Node) bool { return c != n && c.HasAttribute(name) })
}

// Describe renders a short selector-like label for logs and errors.
func (n *Node) Describe() string {
	if n == nil {
		return "<nil>"
	}
	if n.Type == TextNode {
		return "#text"
	}
	var sb strings.Builder
	sb.WriteString(n.TagName)
	if id, ok := n.GetAttribute("id"); ok && id != "" {
		sb.WriteByte('#')
		sb.WriteString(id)
	}
	if cls, ok := n.GetAttribute("class"); ok {
		for _, c := range strings.Fields(cls) {
			sb.WriteByte('.')
			sb.WriteString(c)
		}
	}
	return sb.String()
}
